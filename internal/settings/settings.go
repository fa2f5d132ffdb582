package settings

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/21state/spacetoken/internal/config"
	"github.com/21state/spacetoken/internal/solc"
)

const (
	EnvPrefix      = "SPACETOKEN"
	DefaultSource  = "truffle.yaml"
	DefaultTimeout = 10 * time.Second
)

// Keys shared by viper, flags and the optional settings file.
const (
	KeyConfig      = "config"
	KeyMergePolicy = "merge-policy"
	KeyTimeout     = "timeout"
	KeyDebug       = "debug"
	KeyJSON        = "json"
	KeySolcBaseURL = "solc-base-url"
)

// Settings are the CLI's own runtime options, distinct from the project
// configuration they point at.
type Settings struct {
	Sources     []string
	MergePolicy string
	Timeout     time.Duration
	Debug       bool
	JSON        bool
	SolcBaseURL string
}

// Policy parses the configured merge policy.
func (s Settings) Policy() (config.MergePolicy, error) {
	return config.ParseMergePolicy(s.MergePolicy)
}

func New() *viper.Viper {
	v := viper.New()

	v.SetConfigName("spacetoken")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/spacetoken")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyConfig, []string{DefaultSource})
	v.SetDefault(KeyMergePolicy, config.LastWins.String())
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyJSON, false)
	v.SetDefault(KeySolcBaseURL, solc.DefaultBaseURL)
}

// Bind makes flags take precedence over environment and file values.
func Bind(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, key := range []string{KeyConfig, KeyMergePolicy, KeyTimeout, KeyDebug, KeyJSON, KeySolcBaseURL} {
		f := flags.Lookup(key)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", key, err)
		}
	}
	return nil
}

// Load reads the optional settings file and decodes the merged values.
func Load(v *viper.Viper) (Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	s := Settings{
		Sources:     v.GetStringSlice(KeyConfig),
		MergePolicy: v.GetString(KeyMergePolicy),
		Timeout:     v.GetDuration(KeyTimeout),
		Debug:       v.GetBool(KeyDebug),
		JSON:        v.GetBool(KeyJSON),
		SolcBaseURL: v.GetString(KeySolcBaseURL),
	}
	if len(s.Sources) == 0 {
		s.Sources = []string{DefaultSource}
	}
	if s.Timeout <= 0 {
		return Settings{}, fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}
	if _, err := s.Policy(); err != nil {
		return Settings{}, err
	}
	return s, nil
}
