package directive

import (
	"context"
	"testing"

	"github.com/xxxsen/sshgen/internal/sshconfig"
)

func TestDirectiveProfileApply(t *testing.T) {
	p, err := createDirectiveProfile("admin", &config{
		User:         "admin",
		IdentityFile: "~/.ssh/id_admin",
		Options: map[string]string{
			"Port":         "2222",
			"ForwardAgent": "",
		},
	})
	if err != nil {
		t.Fatalf("createDirectiveProfile error: %v", err)
	}
	st := &sshconfig.Stanza{
		Host:                     "web01",
		HostName:                 "10.0.0.1",
		PreferredAuthentications: "publickey",
		IdentityFile:             "~/.ssh/id_rsa",
		User:                     "smesko",
		Options:                  map[string]string{"ForwardAgent": "yes"},
	}
	keep, err := p.Apply(context.Background(), st)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if !keep {
		t.Fatalf("directive profile should keep the host")
	}
	if st.User != "admin" || st.IdentityFile != "~/.ssh/id_admin" {
		t.Fatalf("unexpected stanza: %+v", st)
	}
	if st.PreferredAuthentications != "publickey" {
		t.Fatalf("unset field should be untouched, got %s", st.PreferredAuthentications)
	}
	if st.Options["Port"] != "2222" {
		t.Fatalf("expected Port option")
	}
	if _, ok := st.Options["ForwardAgent"]; ok {
		t.Fatalf("empty option value should remove the directive")
	}
}

func TestDirectiveProfileInvalid(t *testing.T) {
	if _, err := createDirectiveProfile("noop", &config{}); err == nil {
		t.Fatalf("expected error for profile without changes")
	}
	for _, key := range []string{"Host", "match", "Bad Key", "a=b", "User", "hostname"} {
		if _, err := createDirectiveProfile("bad", &config{Options: map[string]string{key: "x"}}); err == nil {
			t.Fatalf("expected error for option key %q", key)
		}
	}
}
