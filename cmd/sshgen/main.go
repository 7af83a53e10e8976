package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/sshgen/internal/config"
	"github.com/xxxsen/sshgen/internal/generator"
	"github.com/xxxsen/sshgen/internal/matcher"
	_ "github.com/xxxsen/sshgen/internal/matcher/register"
	"github.com/xxxsen/sshgen/internal/profile"
	_ "github.com/xxxsen/sshgen/internal/profile/register"
	"github.com/xxxsen/sshgen/internal/resolver"
	"github.com/xxxsen/sshgen/internal/rule"
	"github.com/xxxsen/sshgen/internal/sshconfig"
	"go.uber.org/zap"
)

type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(v string) error {
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*l = append(*l, item)
		}
	}
	return nil
}

func main() {
	var inputs listFlag
	cfgPath := flag.String("config", "", "path to YAML configuration file")
	output := flag.String("output", "", "output file, '-' for stdout, overrides config")
	mode := flag.String("mode", "", "output mode: append, overwrite or managed, overrides config")
	flag.Var(&inputs, "input", "inventory file, repeatable or comma separated, overrides config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		// logger not initialised yet, fallback to stderr
		log.Fatalf("init config failed, err:%v", err)
	}
	applyFlags(cfg, inputs, *output, *mode)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config, err:%v", err)
	}
	logkit := logger.Init(cfg.Log.File, cfg.Log.Level, int(cfg.Log.FileCount),
		int(cfg.Log.FileSize), int(cfg.Log.KeepDays), cfg.Log.Console)
	defer logkit.Sync() //nolint:errcheck

	g, err := buildGenerator(cfg)
	if err != nil {
		logkit.Fatal("build generator failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := g.Run(ctx)
	if err != nil {
		logkit.Error("generate ssh config failed", zap.Error(err))
		stop()
		_ = logkit.Sync()
		os.Exit(1)
	}
	logkit.Debug("done", zap.Int("host_count", n))
}

func applyFlags(cfg *config.Config, inputs []string, output string, mode string) {
	if len(inputs) > 0 {
		cfg.Input.Files = inputs
	}
	if output = strings.TrimSpace(output); output != "" {
		cfg.Output.File = output
	}
	if mode = strings.TrimSpace(mode); mode != "" {
		cfg.Output.Mode = mode
	}
}

func buildGenerator(cfg *config.Config) (*generator.Generator, error) {
	ms, err := buildMatcherMap(cfg.Resource.Matcher)
	if err != nil {
		return nil, fmt.Errorf("build matcher map failed, err:%w", err)
	}
	ps, err := buildProfileMap(cfg.Resource.Profile)
	if err != nil {
		return nil, fmt.Errorf("build profile map failed, err:%w", err)
	}
	engine, err := buildRuleEngine(cfg.Rules, ms, ps)
	if err != nil {
		return nil, fmt.Errorf("build rule engine failed, err:%w", err)
	}
	w, err := sshconfig.NewWriter(cfg.Output.File, cfg.Output.Mode)
	if err != nil {
		return nil, err
	}
	defaults := &sshconfig.Stanza{
		User:                     cfg.Defaults.User,
		IdentityFile:             cfg.Defaults.IdentityFile,
		PreferredAuthentications: cfg.Defaults.PreferredAuthentications,
	}
	for k, v := range cfg.Defaults.Options {
		defaults.SetOption(k, v)
	}
	opts := []generator.Option{
		generator.WithInputs(cfg.Input.Files...),
		generator.WithDefaults(defaults),
		generator.WithRuleEngine(engine),
		generator.WithIdentityCheck(cfg.CheckIdentity),
		generator.WithWriter(w),
	}
	if cfg.Resolve.Enable {
		r, err := buildResolver(cfg.Resolve)
		if err != nil {
			return nil, fmt.Errorf("build resolver failed, err:%w", err)
		}
		opts = append(opts, generator.WithResolver(r, cfg.Resolve.Parallel, strings.EqualFold(cfg.Resolve.Prefer, "ipv6")))
	}
	return generator.New(opts...)
}

func buildResolver(c config.ResolveConfig) (resolver.IDNSResolver, error) {
	rs, err := resolver.MakeResolvers(c.Servers)
	if err != nil {
		return nil, err
	}
	r, err := resolver.NewGroupResolver(rs, len(rs))
	if err != nil {
		return nil, err
	}
	return resolver.TryEnableResolverCache(r, c.CacheSize)
}

func buildProfileMap(pts []config.ProfileConfig) (map[string]profile.IProfile, error) {
	m := make(map[string]profile.IProfile, len(pts))
	for _, pt := range pts {
		if _, ok := m[pt.Name]; ok {
			return nil, fmt.Errorf("duplicate profile name:%s", pt.Name)
		}
		inst, err := profile.MakeProfile(pt.Type, pt.Name, pt.Data)
		if err != nil {
			return nil, fmt.Errorf("make profile failed, name:%s, type:%s, err:%w", pt.Name, pt.Type, err)
		}
		m[pt.Name] = inst
	}
	return m, nil
}

func buildMatcherMap(ms []config.MatcherConfig) (map[string]matcher.IHostMatcher, error) {
	rs := make(map[string]matcher.IHostMatcher, len(ms))
	for _, m := range ms {
		if _, ok := rs[m.Name]; ok {
			return nil, fmt.Errorf("duplicate matcher name:%s", m.Name)
		}
		inst, err := matcher.MakeMatcher(m.Type, m.Name, m.Data)
		if err != nil {
			return nil, fmt.Errorf("make matcher failed, name:%s, type:%s, err:%w", m.Name, m.Type, err)
		}
		rs[m.Name] = inst
	}
	if _, ok := rs["any"]; !ok {
		anyMatcher, err := matcher.MakeMatcher("any", "any", nil)
		if err != nil {
			return nil, fmt.Errorf("create default any matcher: %w", err)
		}
		rs["any"] = anyMatcher
	}
	return rs, nil
}

func buildRuleEngine(rules []config.Rule, mat map[string]matcher.IHostMatcher, pfm map[string]profile.IProfile) (rule.IHostRuleEngine, error) {
	rs := make([]rule.IHostRule, 0, len(rules))
	for idx, r := range rules {
		remark := r.Remark
		if len(remark) == 0 {
			remark = fmt.Sprintf("rule:%d", idx)
		}
		expr := strings.TrimSpace(r.Match)
		if expr == "" {
			expr = "any"
		}
		m, err := matcher.BuildExpressionMatcher(expr, mat)
		if err != nil {
			return nil, fmt.Errorf("compile matcher expression failed, expr:%s, err:%w", expr, err)
		}
		p, ok := pfm[r.Profile]
		if !ok {
			return nil, fmt.Errorf("profile not found, name:%s", r.Profile)
		}
		rs = append(rs, rule.NewRule(remark, m, p))
	}
	return rule.NewEngine(rs...), nil
}
