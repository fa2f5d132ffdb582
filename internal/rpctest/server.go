// Package rpctest provides a minimal fake Ethereum JSON-RPC node for tests.
package rpctest

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ERC-20 metadata selectors.
const (
	SelectorName     = "06fdde03"
	SelectorSymbol   = "95d89b41"
	SelectorDecimals = "313ce567"
)

type request struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type callArgs struct {
	To    string `json:"to"`
	Input string `json:"input"`
	Data  string `json:"data"`
}

// Node is a fake JSON-RPC node answering eth_chainId and eth_call for the
// ERC-20 metadata getters.
type Node struct {
	*httptest.Server

	chainID uint64

	mu      sync.Mutex
	returns map[string][]byte

	calls atomic.Int64
}

func NewNode(chainID uint64) *Node {
	n := &Node{
		chainID: chainID,
		returns: make(map[string][]byte),
	}
	n.Server = httptest.NewServer(http.HandlerFunc(n.serve))
	return n
}

// SetToken makes eth_call return the given metadata for any contract.
func (n *Node) SetToken(name, symbol string, decimals uint8) {
	n.SetReturn(SelectorName, mustPack("string", name))
	n.SetReturn(SelectorSymbol, mustPack("string", symbol))
	n.SetReturn(SelectorDecimals, mustPack("uint8", decimals))
}

// SetReturn sets the raw ABI-encoded result for a 4-byte selector (hex,
// without 0x). A nil value makes the call revert.
func (n *Node) SetReturn(selector string, ret []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if ret == nil {
		delete(n.returns, selector)
		return
	}
	n.returns[selector] = ret
}

// Calls returns the number of JSON-RPC requests served so far.
func (n *Node) Calls() int64 {
	return n.calls.Load()
}

func (n *Node) serve(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
		var reqs []request
		if err := json.Unmarshal(raw, &reqs); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		out := make([]response, 0, len(reqs))
		for _, req := range reqs {
			out = append(out, n.handle(req))
		}
		_ = json.NewEncoder(w).Encode(out)
		return
	}

	var req request
	if err := json.Unmarshal(raw, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(n.handle(req))
}

func (n *Node) handle(req request) response {
	n.calls.Add(1)
	resp := response{JSONRPC: "2.0", ID: req.ID}

	switch req.Method {
	case "eth_chainId":
		resp.Result = "0x" + new(big.Int).SetUint64(n.chainID).Text(16)
	case "eth_call":
		if len(req.Params) == 0 {
			resp.Error = &rpcError{Code: -32602, Message: "missing call arguments"}
			break
		}
		var args callArgs
		if err := json.Unmarshal(req.Params[0], &args); err != nil {
			resp.Error = &rpcError{Code: -32602, Message: err.Error()}
			break
		}
		input := args.Input
		if input == "" {
			input = args.Data
		}
		input = strings.TrimPrefix(input, "0x")
		if len(input) < 8 {
			resp.Error = &rpcError{Code: -32602, Message: "short call data"}
			break
		}

		n.mu.Lock()
		ret, ok := n.returns[input[:8]]
		n.mu.Unlock()
		if !ok {
			resp.Error = &rpcError{Code: 3, Message: "execution reverted"}
			break
		}
		resp.Result = "0x" + hex.EncodeToString(ret)
	default:
		resp.Error = &rpcError{Code: -32601, Message: fmt.Sprintf("the method %s does not exist/is not available", req.Method)}
	}
	return resp
}

func mustPack(typ string, v interface{}) []byte {
	t, err := abi.NewType(typ, "", nil)
	if err != nil {
		panic(err)
	}
	out, err := abi.Arguments{{Type: t}}.Pack(v)
	if err != nil {
		panic(err)
	}
	return out
}
