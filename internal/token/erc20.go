package token

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"
	"github.com/lmittmann/w3/module/eth"
)

var (
	funcName     = w3.MustNewFunc("name()", "string")
	funcSymbol   = w3.MustNewFunc("symbol()", "string")
	funcDecimals = w3.MustNewFunc("decimals()", "uint8")
)

// ERC20 reads metadata from a deployed token over JSON-RPC eth_call.
type ERC20 struct {
	client  *w3.Client
	address common.Address
}

func NewERC20(client *w3.Client, address common.Address) *ERC20 {
	return &ERC20{client: client, address: address}
}

func (t *ERC20) Address() common.Address {
	return t.address
}

func (t *ERC20) Name(ctx context.Context) (string, error) {
	var name string
	if err := t.client.CallCtx(ctx, eth.CallFunc(t.address, funcName).Returns(&name)); err != nil {
		return "", fmt.Errorf("call name() on %s: %w", t.address.Hex(), err)
	}
	return name, nil
}

func (t *ERC20) Symbol(ctx context.Context) (string, error) {
	var symbol string
	if err := t.client.CallCtx(ctx, eth.CallFunc(t.address, funcSymbol).Returns(&symbol)); err != nil {
		return "", fmt.Errorf("call symbol() on %s: %w", t.address.Hex(), err)
	}
	return symbol, nil
}

func (t *ERC20) Decimals(ctx context.Context) (uint8, error) {
	var decimals uint8
	if err := t.client.CallCtx(ctx, eth.CallFunc(t.address, funcDecimals).Returns(&decimals)); err != nil {
		return 0, fmt.Errorf("call decimals() on %s: %w", t.address.Hex(), err)
	}
	return decimals, nil
}

// AttachFactory hands out a new handle to the deployed token at address on
// every call. Deployment itself is left to the external toolchain.
func AttachFactory(client *w3.Client, address common.Address) Factory {
	return func(context.Context) (Token, error) {
		return NewERC20(client, address), nil
	}
}

// ParseAddress validates a hex token address.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid token address: %s", s)
	}
	return common.HexToAddress(s), nil
}
