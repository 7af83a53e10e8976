package generator

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/sshgen/internal/hosts"
	"github.com/xxxsen/sshgen/internal/identity"
	"github.com/xxxsen/sshgen/internal/resolver"
	"github.com/xxxsen/sshgen/internal/rule"
	"github.com/xxxsen/sshgen/internal/sshconfig"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultParallel = 8

// Generator turns inventory files into ssh client config stanzas.
type Generator struct {
	c *options
}

func New(opts ...Option) (*Generator, error) {
	c := &options{}
	for _, opt := range opts {
		opt(c)
	}
	if len(c.inputs) == 0 {
		return nil, fmt.Errorf("no input file")
	}
	if c.writer == nil {
		return nil, fmt.Errorf("no output writer")
	}
	if c.defaults == nil {
		c.defaults = &sshconfig.Stanza{PreferredAuthentications: sshconfig.DefaultPreferredAuthentications}
	}
	if c.engine == nil {
		c.engine = rule.NewEngine()
	}
	if c.parallel <= 0 {
		c.parallel = defaultParallel
	}
	return &Generator{c: c}, nil
}

// Run writes the generated stanzas and returns how many were written. Nothing
// is written when any step before the output fails.
func (g *Generator) Run(ctx context.Context) (int, error) {
	entries, err := hosts.LoadEntriesFromFiles(ctx, g.c.inputs)
	if err != nil {
		return 0, err
	}
	stanzas, err := g.Build(ctx, entries)
	if err != nil {
		return 0, err
	}
	if err := g.c.writer.Write(ctx, stanzas); err != nil {
		return 0, err
	}
	logutil.GetLogger(ctx).Info("generate ssh config succ",
		zap.Int("entry_count", len(entries)),
		zap.Int("host_count", len(stanzas)),
		zap.String("output", g.c.writer.Path()),
		zap.String("mode", g.c.writer.Mode()),
	)
	return len(stanzas), nil
}

// Build applies defaults, rules, pinning and the identity check to entries.
func (g *Generator) Build(ctx context.Context, entries []*hosts.HostEntry) ([]*sshconfig.Stanza, error) {
	stanzas := make([]*sshconfig.Stanza, 0, len(entries))
	kept := make([]*hosts.HostEntry, 0, len(entries))
	for _, entry := range entries {
		st := g.c.defaults.Clone()
		st.Host = entry.Alias
		st.HostName = entry.Address
		keep, err := g.c.engine.Execute(ctx, entry, st)
		if err != nil {
			return nil, fmt.Errorf("apply rules to %s: %w", entry, err)
		}
		if !keep {
			continue
		}
		stanzas = append(stanzas, st)
		kept = append(kept, entry)
	}
	if g.c.resolver != nil {
		if err := g.pin(ctx, kept, stanzas); err != nil {
			return nil, err
		}
	}
	if g.c.checkIdentity {
		if err := identity.CheckStanzas(ctx, stanzas); err != nil {
			return nil, err
		}
	}
	return stanzas, nil
}

func (g *Generator) pin(ctx context.Context, entries []*hosts.HostEntry, stanzas []*sshconfig.Stanza) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.c.parallel)
	for i, entry := range entries {
		if entry.IsIP() {
			continue
		}
		st := stanzas[i]
		eg.Go(func() error {
			ip, err := resolver.LookupAddress(ctx, g.c.resolver, entry.Address, g.c.preferIPv6)
			if err != nil {
				return fmt.Errorf("pin %s: %w", entry, err)
			}
			logutil.GetLogger(ctx).Debug("pin host address",
				zap.String("host", entry.Alias), zap.String("name", entry.Address), zap.String("ip", ip.String()))
			st.HostName = ip.String()
			return nil
		})
	}
	return eg.Wait()
}
