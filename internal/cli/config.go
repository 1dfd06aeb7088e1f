package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nestsync/nestsync/internal/authflow"
	"github.com/nestsync/nestsync/internal/brightwheel"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// Config represents the configuration for the nestsync CLI. Every field
// is optional; the zero config syncs into the current directory against
// the production API with the cookie file alongside the media tree.
type Config struct {
	// Version of the configuration file format
	Version string `yaml:"version"`
	// APIBaseURL overrides the guardian API base, mainly for testing
	APIBaseURL string `yaml:"api_base_url" validate:"omitempty,url"`
	// MediaDir is the root under which per-child trees are created
	MediaDir string `yaml:"media_dir"`
	// CookieFile is where the session cookie jar is persisted
	CookieFile string `yaml:"cookie_file"`
	// PageSize overrides the activity feed page size
	PageSize int `yaml:"page_size" validate:"omitempty,gt=0"`
	// Email is the account email (stored for convenience)
	Email string `yaml:"email" validate:"omitempty,email"`
}

// GetDefaultConfigPath returns the default path for the config file
// (e.g. ~/.config/nestsync/config.yaml on Linux).
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "nestsync", DefaultConfigFile), nil
}

// LoadConfig loads the configuration from the specified file, or from the
// default location when file is empty. A missing file is not an error:
// the defaults apply.
func LoadConfig(file string) (*Config, error) {
	cfg := &Config{
		MediaDir:   ".",
		CookieFile: "cookies.json",
	}

	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	if cfg.MediaDir == "" {
		cfg.MediaDir = "."
	}
	if cfg.CookieFile == "" {
		cfg.CookieFile = "cookies.json"
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newManager builds the session client and authentication manager for
// the given configuration. The manager resumes a persisted session when
// the cookie file is usable.
func newManager(cfg *Config) (*authflow.Manager, error) {
	client, err := brightwheel.NewClient(cfg.APIBaseURL)
	if err != nil {
		return nil, err
	}
	return authflow.NewManager(client, cfg.CookieFile), nil
}
