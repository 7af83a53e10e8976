package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/sshgen/internal/sshconfig"
	"gopkg.in/yaml.v3"
)

const (
	DefaultInputFile    = "vms"
	DefaultOutputFile   = "~/.ssh/config.d/internal"
	DefaultIdentityFile = "~/.ssh/id_rsa"
	DefaultResolveLink  = "udp://1.1.1.1:53"
)

// Config is the root runtime configuration.
type Config struct {
	Input         InputConfig      `json:"input" yaml:"input"`
	Output        OutputConfig     `json:"output" yaml:"output"`
	Defaults      StanzaConfig     `json:"defaults" yaml:"defaults"`
	CheckIdentity bool             `json:"check_identity" yaml:"check_identity"`
	Resolve       ResolveConfig    `json:"resolve" yaml:"resolve"`
	Resource      Resource         `json:"resource" yaml:"resource"`
	Rules         []Rule           `json:"rules" yaml:"rules"`
	Log           logger.LogConfig `json:"log" yaml:"log"`
}

type InputConfig struct {
	Files []string `json:"files" yaml:"files"`
}

type OutputConfig struct {
	File string `json:"file" yaml:"file"`
	Mode string `json:"mode" yaml:"mode"`
}

type StanzaConfig struct {
	User                     string            `json:"user" yaml:"user"`
	IdentityFile             string            `json:"identity_file" yaml:"identity_file"`
	PreferredAuthentications string            `json:"preferred_authentications" yaml:"preferred_authentications"`
	Options                  map[string]string `json:"options" yaml:"options"`
}

type ResolveConfig struct {
	Enable    bool     `json:"enable" yaml:"enable"`
	Servers   []string `json:"servers" yaml:"servers"`
	Parallel  int      `json:"parallel" yaml:"parallel"`
	CacheSize int      `json:"cache_size" yaml:"cache_size"`
	Prefer    string   `json:"prefer" yaml:"prefer"` // ipv4 or ipv6
}

type MatcherConfig struct {
	Name string      `json:"name" yaml:"name"`
	Type string      `json:"type" yaml:"type"`
	Data interface{} `json:"data" yaml:"data"`
}

type ProfileConfig struct {
	Name string      `json:"name" yaml:"name"`
	Type string      `json:"type" yaml:"type"`
	Data interface{} `json:"data" yaml:"data"`
}

type Rule struct {
	Remark  string `json:"remark" yaml:"remark"`
	Match   string `json:"match" yaml:"match"`
	Profile string `json:"profile" yaml:"profile"`
}

type Resource struct {
	Matcher []MatcherConfig `json:"matcher" yaml:"matcher"`
	Profile []ProfileConfig `json:"profile" yaml:"profile"`
}

// Default returns the settings that reproduce the classic generator: hosts from
// ./vms appended to ~/.ssh/config.d/internal with publickey auth.
func Default() *Config {
	return &Config{
		Input:  InputConfig{Files: []string{DefaultInputFile}},
		Output: OutputConfig{File: DefaultOutputFile, Mode: sshconfig.ModeAppend},
		Defaults: StanzaConfig{
			User:                     currentUser(),
			IdentityFile:             DefaultIdentityFile,
			PreferredAuthentications: sshconfig.DefaultPreferredAuthentications,
		},
		Resolve: ResolveConfig{
			Servers:   []string{DefaultResolveLink},
			Parallel:  8,
			CacheSize: 1024,
			Prefer:    "ipv4",
		},
		Log: logger.LogConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Load reads the configuration file from disk on top of Default, an empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise only fail halfway through a run.
func (c *Config) Validate() error {
	if len(c.Input.Files) == 0 {
		return fmt.Errorf("no input files configured")
	}
	if strings.TrimSpace(c.Output.File) == "" {
		return fmt.Errorf("no output file configured")
	}
	switch strings.ToLower(c.Output.Mode) {
	case "", sshconfig.ModeAppend, sshconfig.ModeOverwrite, sshconfig.ModeManaged:
	default:
		return fmt.Errorf("unsupported output mode:%s", c.Output.Mode)
	}
	for k := range c.Defaults.Options {
		if err := sshconfig.ValidateOptionKey(k); err != nil {
			return fmt.Errorf("defaults: %w", err)
		}
	}
	switch strings.ToLower(c.Resolve.Prefer) {
	case "", "ipv4", "ipv6":
	default:
		return fmt.Errorf("unsupported resolve prefer:%s", c.Resolve.Prefer)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error", "panic", "fatal":
	default:
		return fmt.Errorf("unsupported log level:%s", c.Log.Level)
	}
	if c.Resolve.Enable && len(c.Resolve.Servers) == 0 {
		return fmt.Errorf("resolve enabled without servers")
	}
	for idx, r := range c.Rules {
		if strings.TrimSpace(r.Profile) == "" {
			return fmt.Errorf("rule:%d has no profile", idx)
		}
	}
	return nil
}

// currentUser follows $USER like the shell does, the passwd entry is only a
// fallback for environments without it.
func currentUser() string {
	if name := strings.TrimSpace(os.Getenv("USER")); name != "" {
		return name
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}
