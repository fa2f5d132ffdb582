package config

// File is a single decoded configuration source.
type File struct {
	// Source names where the file came from in merge diagnostics.
	Source   string             `yaml:"-"`
	Networks map[string]Network `yaml:"networks"`
	Solc     *Compiler          `yaml:"solc,omitempty"`
}

// Network is a named connection profile.
type Network struct {
	Name      string    `yaml:"-"`
	Host      string    `yaml:"host"`
	Port      int       `yaml:"port"`
	NetworkID NetworkID `yaml:"network_id"`
}

type Compiler struct {
	Version   *string   `yaml:"version"`
	Optimizer Optimizer `yaml:"optimizer"`
}

type Optimizer struct {
	Enabled bool `yaml:"enabled"`
	Runs    int  `yaml:"runs"`
}
