package generator

import (
	"github.com/xxxsen/sshgen/internal/resolver"
	"github.com/xxxsen/sshgen/internal/rule"
	"github.com/xxxsen/sshgen/internal/sshconfig"
)

// Option configures the generator.
type Option func(*options)

type options struct {
	inputs        []string
	defaults      *sshconfig.Stanza
	engine        rule.IHostRuleEngine
	resolver      resolver.IDNSResolver
	parallel      int
	preferIPv6    bool
	checkIdentity bool
	writer        *sshconfig.Writer
}

// WithInputs sets the inventory files, read in order.
func WithInputs(files ...string) Option {
	return func(o *options) {
		o.inputs = append(o.inputs, files...)
	}
}

// WithDefaults sets the directives every stanza starts from, Host and HostName are ignored.
func WithDefaults(st *sshconfig.Stanza) Option {
	return func(o *options) {
		o.defaults = st
	}
}

func WithRuleEngine(re rule.IHostRuleEngine) Option {
	return func(o *options) {
		o.engine = re
	}
}

// WithResolver enables pinning HostName of named hosts to a resolved ip.
func WithResolver(r resolver.IDNSResolver, parallel int, preferIPv6 bool) Option {
	return func(o *options) {
		o.resolver = r
		o.parallel = parallel
		o.preferIPv6 = preferIPv6
	}
}

func WithIdentityCheck(v bool) Option {
	return func(o *options) {
		o.checkIdentity = v
	}
}

func WithWriter(w *sshconfig.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}
