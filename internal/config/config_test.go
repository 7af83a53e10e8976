package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config error: %v", err)
	}
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(cfg.Input.Files) != 1 || cfg.Input.Files[0] != DefaultInputFile {
		t.Fatalf("unexpected input files: %v", cfg.Input.Files)
	}
	if cfg.Output.File != DefaultOutputFile || cfg.Output.Mode != "append" {
		t.Fatalf("unexpected output: %+v", cfg.Output)
	}
	if cfg.Defaults.PreferredAuthentications != "publickey" {
		t.Fatalf("unexpected auth: %s", cfg.Defaults.PreferredAuthentications)
	}
	if cfg.Resolve.Enable {
		t.Fatalf("resolve should be disabled by default")
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
input:
  files: [vms, more-vms]
output:
  file: /tmp/internal
  mode: managed
defaults:
  user: smesko
  identity_file: ~/.ssh/id_smesko
  options:
    Port: "22"
check_identity: true
resolve:
  enable: true
  servers: ["udp://9.9.9.9:53?timeout=1000"]
  prefer: ipv6
resource:
  matcher:
    - name: prod
      type: alias
      data:
        patterns: ["glob:prod-*"]
  profile:
    - name: admin
      type: directive
      data:
        user: admin
rules:
  - remark: prod hosts
    match: prod
    profile: admin
log:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(cfg.Input.Files) != 2 || cfg.Input.Files[1] != "more-vms" {
		t.Fatalf("unexpected input files: %v", cfg.Input.Files)
	}
	if cfg.Output.Mode != "managed" || cfg.Defaults.User != "smesko" || cfg.Defaults.Options["Port"] != "22" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Defaults.PreferredAuthentications != "publickey" {
		t.Fatalf("unset field should keep its default, got %q", cfg.Defaults.PreferredAuthentications)
	}
	if !cfg.CheckIdentity || !cfg.Resolve.Enable || cfg.Resolve.Prefer != "ipv6" {
		t.Fatalf("unexpected flags: %+v", cfg.Resolve)
	}
	if cfg.Resolve.Parallel != 8 {
		t.Fatalf("resolve parallel should keep default, got %d", cfg.Resolve.Parallel)
	}
	if len(cfg.Resource.Matcher) != 1 || len(cfg.Resource.Profile) != 1 || len(cfg.Rules) != 1 {
		t.Fatalf("unexpected resource/rules: %+v %+v", cfg.Resource, cfg.Rules)
	}
	if cfg.Rules[0].Profile != "admin" || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected rule/log: %+v %+v", cfg.Rules[0], cfg.Log)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad mode", "output: {mode: truncate}\n"},
		{"bad prefer", "resolve: {prefer: ipx}\n"},
		{"bad option", "defaults: {options: {Host: x}}\n"},
		{"empty input", "input: {files: []}\n"},
		{"rule without profile", "rules: [{match: any}]\n"},
		{"resolve without servers", "resolve: {enable: true, servers: []}\n"},
		{"broken yaml", "input: [\n"},
		{"option shadows user", "defaults: {options: {User: root}}\n"},
		{"bad log level", "log: {level: warning}\n"},
		{"empty log level", "log: {level: \"\"}\n"},
	}
	for _, tc := range tests {
		if _, err := Load(writeConfig(t, tc.data)); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDefaultUserFromEnv(t *testing.T) {
	t.Setenv("USER", "someone")
	if got := Default().Defaults.User; got != "someone" {
		t.Fatalf("default user should follow $USER, got %q", got)
	}
}

func TestLoadLogLevelCaseInsensitive(t *testing.T) {
	cfg, err := Load(writeConfig(t, "log: {level: WARN}\n"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Log.Level != "WARN" {
		t.Fatalf("unexpected log level: %s", cfg.Log.Level)
	}
}
