package checker

import (
	"context"
	"fmt"
	"strconv"

	"github.com/21state/spacetoken/internal/token"
)

type Property string

const (
	PropertyName     Property = "name"
	PropertySymbol   Property = "symbol"
	PropertyDecimals Property = "decimals"
)

// Properties lists the checked accessors in report order.
var Properties = []Property{PropertyName, PropertySymbol, PropertyDecimals}

type DebugLogger func(format string, a ...interface{})

// Suite checks a token's accessors against expected metadata. Every
// property runs against its own instance from Factory, so one failure never
// affects another property's result.
type Suite struct {
	Factory  token.Factory
	Expected token.Metadata
	// Repeat is how many times each accessor is read on the same instance.
	Repeat   int
	DebugLog DebugLogger
}

type Result struct {
	Property Property `json:"property"`
	Expected string   `json:"expected"`
	Actual   string   `json:"actual,omitempty"`
	Err      error    `json:"-"`
}

func (r Result) Passed() bool {
	return r.Err == nil && r.Actual == r.Expected
}

func (r Result) String() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("%s: %v", r.Property, r.Err)
	case r.Passed():
		return fmt.Sprintf("%s: %q", r.Property, r.Actual)
	default:
		return fmt.Sprintf("%s: expected %q, got %q", r.Property, r.Expected, r.Actual)
	}
}

type Report struct {
	Expected token.Metadata `json:"expected"`
	Results  []Result       `json:"results"`
}

func (r Report) Passed() bool {
	return len(r.Failures()) == 0
}

func (r Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.Passed() {
			failed = append(failed, res)
		}
	}
	return failed
}

func (s *Suite) Run(ctx context.Context) Report {
	report := Report{Expected: s.Expected}
	for _, p := range Properties {
		res := s.check(ctx, p)
		s.debugLog("Checked %s: %s", p, res)
		report.Results = append(report.Results, res)
	}
	return report
}

func (s *Suite) check(ctx context.Context, p Property) Result {
	res := Result{Property: p, Expected: s.expected(p)}

	tok, err := s.Factory(ctx)
	if err != nil {
		res.Err = fmt.Errorf("construct token: %w", err)
		return res
	}

	repeat := s.Repeat
	if repeat < 1 {
		repeat = 1
	}
	for i := 0; i < repeat; i++ {
		actual, err := read(ctx, tok, p)
		if err != nil {
			res.Err = err
			return res
		}
		if i > 0 && actual != res.Actual {
			res.Err = fmt.Errorf("read %d returned %q after %q", i+1, actual, res.Actual)
			return res
		}
		res.Actual = actual
	}
	return res
}

func (s *Suite) expected(p Property) string {
	switch p {
	case PropertyName:
		return s.Expected.Name
	case PropertySymbol:
		return s.Expected.Symbol
	default:
		return strconv.FormatUint(uint64(s.Expected.Decimals), 10)
	}
}

func (s *Suite) debugLog(format string, a ...interface{}) {
	if s.DebugLog != nil {
		s.DebugLog(format, a...)
	}
}

// read returns the accessor value in a comparable form. Decimals are
// rendered in base 10 so that they compare by numeric value.
func read(ctx context.Context, tok token.Token, p Property) (string, error) {
	switch p {
	case PropertyName:
		return tok.Name(ctx)
	case PropertySymbol:
		return tok.Symbol(ctx)
	case PropertyDecimals:
		d, err := tok.Decimals(ctx)
		if err != nil {
			return "", err
		}
		return strconv.FormatUint(uint64(d), 10), nil
	default:
		return "", fmt.Errorf("unknown property %q", p)
	}
}
