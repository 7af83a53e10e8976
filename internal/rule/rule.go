package rule

import (
	"context"

	"github.com/xxxsen/sshgen/internal/hosts"
	"github.com/xxxsen/sshgen/internal/matcher"
	"github.com/xxxsen/sshgen/internal/profile"
	"github.com/xxxsen/sshgen/internal/sshconfig"
)

type IHostRule interface {
	Name() string
	Match(ctx context.Context, entry *hosts.HostEntry) (bool, error)
	Apply(ctx context.Context, st *sshconfig.Stanza) (bool, error)
}

type defaultRule struct {
	name string
	mat  matcher.IHostMatcher
	pf   profile.IProfile
}

func (d defaultRule) Apply(ctx context.Context, st *sshconfig.Stanza) (bool, error) {
	return d.pf.Apply(ctx, st)
}

func (d defaultRule) Match(ctx context.Context, entry *hosts.HostEntry) (bool, error) {
	return d.mat.Match(ctx, entry)
}

func (d defaultRule) Name() string {
	return d.name
}

func NewRule(name string, mat matcher.IHostMatcher, pf profile.IProfile) IHostRule {
	return defaultRule{name: name, mat: mat, pf: pf}
}
