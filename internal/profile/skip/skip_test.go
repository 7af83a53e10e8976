package skip

import (
	"context"
	"testing"

	"github.com/xxxsen/sshgen/internal/profile"
	"github.com/xxxsen/sshgen/internal/sshconfig"
)

func TestSkipProfile(t *testing.T) {
	p, err := profile.MakeProfile("skip", "drop", nil)
	if err != nil {
		t.Fatalf("MakeProfile error: %v", err)
	}
	keep, err := p.Apply(context.Background(), &sshconfig.Stanza{Host: "web01"})
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if keep {
		t.Fatalf("skip profile should drop the host")
	}
	if p.Type() != "skip" || p.Name() != "drop" {
		t.Fatalf("unexpected name/type: %s/%s", p.Name(), p.Type())
	}
}
