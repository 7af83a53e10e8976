package rule

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/sshgen/internal/hosts"
	"github.com/xxxsen/sshgen/internal/sshconfig"
	"go.uber.org/zap"
)

type IHostRuleEngine interface {
	// Execute applies the first matching rule to st, hosts without a match keep st as is.
	Execute(ctx context.Context, entry *hosts.HostEntry, st *sshconfig.Stanza) (bool, error)
}

type defaultEngine struct {
	rules []IHostRule
}

func (d *defaultEngine) Execute(ctx context.Context, entry *hosts.HostEntry, st *sshconfig.Stanza) (bool, error) {
	for _, r := range d.rules {
		ok, err := r.Match(ctx, entry)
		if err != nil {
			return false, fmt.Errorf("exec rule failed, name:%s, err:%w", r.Name(), err)
		}
		if !ok {
			continue
		}
		logutil.GetLogger(ctx).Debug("match rule", zap.String("rule_remark", r.Name()), zap.String("host", entry.Alias))
		keep, err := r.Apply(ctx, st)
		if err != nil {
			logutil.GetLogger(ctx).Error("apply rule failed", zap.String("rule_remark", r.Name()), zap.Error(err))
			return false, err
		}
		return keep, nil
	}
	return true, nil
}

func NewEngine(rules ...IHostRule) IHostRuleEngine {
	return &defaultEngine{rules: rules}
}
