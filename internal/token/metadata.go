package token

import (
	"context"
	"fmt"
	"math"
)

// Metadata is the descriptive triple a token is constructed with.
type Metadata struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

func (m Metadata) String() string {
	return fmt.Sprintf("%s (%s, %d decimals)", m.Name, m.Symbol, m.Decimals)
}

// ParseDecimals narrows a decimal count to the uint8 range used by ERC-20.
func ParseDecimals(d uint) (uint8, error) {
	if d > math.MaxUint8 {
		return 0, fmt.Errorf("decimals %d out of range (0-%d)", d, math.MaxUint8)
	}
	return uint8(d), nil
}

// Token is the read-only accessor set shared by in-memory and deployed tokens.
type Token interface {
	Name(ctx context.Context) (string, error)
	Symbol(ctx context.Context) (string, error)
	Decimals(ctx context.Context) (uint8, error)
}

// Factory yields a fresh Token handle on every call.
type Factory func(ctx context.Context) (Token, error)

// Read collects all three accessors into a Metadata value.
func Read(ctx context.Context, t Token) (Metadata, error) {
	name, err := t.Name(ctx)
	if err != nil {
		return Metadata{}, fmt.Errorf("read name: %w", err)
	}
	symbol, err := t.Symbol(ctx)
	if err != nil {
		return Metadata{}, fmt.Errorf("read symbol: %w", err)
	}
	decimals, err := t.Decimals(ctx)
	if err != nil {
		return Metadata{}, fmt.Errorf("read decimals: %w", err)
	}
	return Metadata{Name: name, Symbol: symbol, Decimals: decimals}, nil
}
