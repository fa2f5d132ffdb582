package config

import (
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
)

var (
	ErrProfileNotFound = errors.New("network profile not found")
	ErrConflict        = errors.New("conflicting configuration")
)

// Config is the merged, validated project configuration. It is not modified
// after Merge returns; accessors hand out copies.
type Config struct {
	networks map[string]Network
	compiler Compiler
}

// Profile returns the named network profile. Unknown names are reported with
// ErrProfileNotFound.
func (c *Config) Profile(name string) (Network, error) {
	n, ok := c.networks[name]
	if !ok {
		return Network{}, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	return n, nil
}

// Profiles returns the profile names in sorted order.
func (c *Config) Profiles() []string {
	names := make([]string, 0, len(c.networks))
	for name := range c.networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Networks returns every profile ordered by name.
func (c *Config) Networks() []Network {
	names := c.Profiles()
	out := make([]Network, 0, len(names))
	for _, name := range names {
		out = append(out, c.networks[name])
	}
	return out
}

func (c *Config) Compiler() Compiler {
	out := c.compiler
	if out.Version != nil {
		v := *out.Version
		out.Version = &v
	}
	return out
}

func (c *Config) Validate() error {
	var errs []error
	for _, n := range c.Networks() {
		if err := n.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.compiler.Optimizer.Runs < 0 {
		errs = append(errs, fmt.Errorf("solc: optimizer runs must not be negative, got %d", c.compiler.Optimizer.Runs))
	}
	if _, err := c.compiler.Constraint(); err != nil {
		errs = append(errs, fmt.Errorf("solc: %w", err))
	}
	return errors.Join(errs...)
}

func (n Network) Validate() error {
	if n.Host == "" {
		return fmt.Errorf("network %q: host is required", n.Name)
	}
	if n.Port < 1 || n.Port > 65535 {
		return fmt.Errorf("network %q: port %d out of range", n.Name, n.Port)
	}
	if n.NetworkID == "" {
		return fmt.Errorf("network %q: network_id is required", n.Name)
	}
	return nil
}

// Endpoint returns host:port.
func (n Network) Endpoint() string {
	return net.JoinHostPort(n.Host, strconv.Itoa(n.Port))
}

// RPCURL returns the JSON-RPC URL for the profile.
func (n Network) RPCURL() string {
	return "http://" + n.Endpoint()
}
