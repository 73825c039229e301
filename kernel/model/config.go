package model

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const ConfigFileName = "config.yml"

const (
	DefaultPollInterval = 5 * time.Second
	DefaultProbeTimeout = 3 * time.Second
	DefaultProbePort    = 25565
	DefaultSSHPort      = 22
)

// Duration wraps time.Duration so intervals can be written as "5s" in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errors.Wrapf(err, "invalid duration '%s'", raw)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Get() time.Duration {
	return time.Duration(d)
}

// InfluxConfig enables tick telemetry when all fields are set.
type InfluxConfig struct {
	Url    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

func (c *InfluxConfig) Enabled() bool {
	return c != nil && c.Url != "" && c.Token != ""
}

// RemoteConfig enables SSH access to the game host for log tailing and
// backup retrieval.
type RemoteConfig struct {
	User       string `yaml:"user"`
	KeyFile    string `yaml:"key_file"`
	SSHPort    int    `yaml:"ssh_port"`
	LogPath    string `yaml:"log_path"`
	BackupPath string `yaml:"backup_path"`
}

type Config struct {
	// InstanceId may be left empty, in which case the first instance
	// returned by the provider is used (resolved once, at startup).
	InstanceId string `yaml:"instance_id"`
	Region     string `yaml:"region"`

	// Discord display surface. When BotToken is empty the topic is only
	// logged locally.
	BotToken  string `yaml:"bot_token"`
	ChannelId string `yaml:"channel_id"`

	PollInterval Duration `yaml:"poll_interval"`
	ProbePort    int      `yaml:"probe_port"`
	ProbeTimeout Duration `yaml:"probe_timeout"`

	Influx *InfluxConfig `yaml:"influx"`
	Remote *RemoteConfig `yaml:"remote"`
}

// LoadConfig reads and validates a config file, applying defaults for
// anything unset.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read config file '%s'", path)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "unable to parse config file '%s'", path)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = Duration(DefaultPollInterval)
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = Duration(DefaultProbeTimeout)
	}
	if c.ProbePort == 0 {
		c.ProbePort = DefaultProbePort
	}
	if c.Remote != nil && c.Remote.SSHPort == 0 {
		c.Remote.SSHPort = DefaultSSHPort
	}
}

func (c *Config) Validate() error {
	if c.Region == "" {
		return errors.New("config: region is required")
	}
	if c.BotToken != "" && c.ChannelId == "" {
		return errors.New("config: channel_id is required when bot_token is set")
	}
	if c.Remote != nil {
		if c.Remote.User == "" || c.Remote.KeyFile == "" {
			return errors.New("config: remote requires user and key_file")
		}
	}
	return nil
}

// ConfigDir returns the directory holding the user's config file.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "unable to determine home directory")
	}
	return filepath.Join(home, ".config", "friendo"), nil
}

func DefaultConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}
