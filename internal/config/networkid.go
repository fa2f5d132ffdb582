package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Wildcard matches any chain id.
const Wildcard NetworkID = "*"

// NetworkID is either Wildcard or an explicit chain id in decimal or 0x-hex.
type NetworkID string

func (id *NetworkID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("network_id must be a scalar, got %s at line %d", kindName(value.Kind), value.Line)
	}
	raw := strings.TrimSpace(value.Value)
	if raw == "" || value.Tag == "!!null" {
		*id = ""
		return nil
	}
	if NetworkID(raw) != Wildcard {
		if _, err := parseChainID(raw); err != nil {
			return fmt.Errorf("invalid network_id %q at line %d: %w", raw, value.Line, err)
		}
	}
	*id = NetworkID(raw)
	return nil
}

func (id NetworkID) IsWildcard() bool {
	return id == Wildcard
}

// Matches reports whether a node reporting chainID satisfies this id.
func (id NetworkID) Matches(chainID uint64) bool {
	if id.IsWildcard() {
		return true
	}
	want, err := parseChainID(string(id))
	if err != nil {
		return false
	}
	return want == chainID
}

func (id NetworkID) String() string {
	return string(id)
}

func parseChainID(s string) (uint64, error) {
	if hex, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		return strconv.ParseUint(hex, 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
