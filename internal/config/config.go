// Package config holds the pyena configuration: archive endpoints,
// transfer settings, and the Webin credential pair used for both the
// submission API and the FTP upload area.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/CLIMB-COVID/pyena/internal/errors"
)

// Environment variables holding the Webin credential pair.
const (
	EnvUser = "WEBIN_USER"
	EnvPass = "WEBIN_PASS"
)

// Config represents the pyena configuration.
type Config struct {
	Submission SubmissionConfig `yaml:"submission"`
	Portal     PortalConfig     `yaml:"portal"`
	Transfer   TransferConfig   `yaml:"transfer"`

	// Credentials are sourced from the environment, never the file.
	Credentials Credentials `yaml:"-"`
}

// SubmissionConfig contains drop-box endpoint settings.
type SubmissionConfig struct {
	ProductionURL  string `yaml:"production_url"`
	SandboxURL     string `yaml:"sandbox_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// PortalConfig contains the read-only search endpoint settings.
type PortalConfig struct {
	SearchURL      string `yaml:"search_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// TransferConfig contains FTP upload settings.
type TransferConfig struct {
	Host           string `yaml:"host"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Credentials is the Webin account pair. It is passed explicitly to the
// clients that need it rather than read from ambient process state.
type Credentials struct {
	Username string
	Password string
}

// Default returns the default configuration, pointing at the live ENA
// endpoints.
func Default() *Config {
	return &Config{
		Submission: SubmissionConfig{
			ProductionURL:  "https://www.ebi.ac.uk/ena/submit/drop-box/submit/",
			SandboxURL:     "https://wwwdev.ebi.ac.uk/ena/submit/drop-box/submit/",
			TimeoutSeconds: 120,
		},
		Portal: PortalConfig{
			SearchURL:      "https://www.ebi.ac.uk/ena/portal/api/search",
			TimeoutSeconds: 60,
		},
		Transfer: TransferConfig{
			Host:           "webin.ebi.ac.uk:21",
			TimeoutSeconds: 30,
		},
	}
}

// Load loads configuration from a file, overlaying the defaults, and
// reads the Webin credentials from the environment. It fails if either
// credential variable is unset.
func Load(path string) (*Config, error) {
	const op = errors.Op("config.Load")

	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.E(op, errors.KindIO, err, "failed to read config file")
			}
		} else if err := yaml.Unmarshal(data, config); err != nil {
			return nil, errors.E(op, errors.KindConfig, err, "failed to parse config file")
		}
	}

	creds, err := CredentialsFromEnv()
	if err != nil {
		return nil, err
	}
	config.Credentials = creds

	return config, nil
}

// CredentialsFromEnv reads the Webin credential pair from the
// environment.
func CredentialsFromEnv() (Credentials, error) {
	const op = errors.Op("config.CredentialsFromEnv")

	user := os.Getenv(EnvUser)
	pass := os.Getenv(EnvPass)
	if user == "" || pass == "" {
		return Credentials{}, errors.E(op, errors.KindConfig,
			fmt.Sprintf("both %s and %s must be set", EnvUser, EnvPass))
	}
	return Credentials{Username: user, Password: pass}, nil
}

// Path returns the config file path to load: $PYENA_CONFIG if set, then
// ./pyena.yaml if present, otherwise empty (defaults only).
func Path() string {
	if path := os.Getenv("PYENA_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat("pyena.yaml"); err == nil {
		return "pyena.yaml"
	}
	return ""
}

// Save writes the configuration to a file. Credentials are never
// written.
func (c *Config) Save(path string) error {
	const op = errors.Op("config.Save")

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.E(op, errors.KindConfig, err, "failed to marshal config")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.E(op, errors.KindIO, err, "failed to write config file")
	}
	return nil
}
