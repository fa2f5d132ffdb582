package token

import "context"

// Static is an in-memory token holding the values it was constructed with.
type Static struct {
	md Metadata
}

func New(name, symbol string, decimals uint8) *Static {
	return &Static{md: Metadata{Name: name, Symbol: symbol, Decimals: decimals}}
}

func (s *Static) Name(context.Context) (string, error)    { return s.md.Name, nil }
func (s *Static) Symbol(context.Context) (string, error)  { return s.md.Symbol, nil }
func (s *Static) Decimals(context.Context) (uint8, error) { return s.md.Decimals, nil }

// NewFactory constructs a new Static from md on every call.
func NewFactory(md Metadata) Factory {
	return func(context.Context) (Token, error) {
		return New(md.Name, md.Symbol, md.Decimals), nil
	}
}
