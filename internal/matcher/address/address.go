package address

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/utils"
	"github.com/xxxsen/sshgen/internal/hosts"
	"github.com/xxxsen/sshgen/internal/matcher"
	"github.com/xxxsen/sshgen/internal/matcher/alias"
)

type addressMatcher struct {
	name string
	ps   *matcher.PatternSet
}

func (a *addressMatcher) Name() string {
	return a.name
}

func (a *addressMatcher) Type() string {
	return "address"
}

func (a *addressMatcher) Match(ctx context.Context, entry *hosts.HostEntry) (bool, error) {
	return a.ps.Match(entry.Address), nil
}

func newAddressMatcher(name string, patterns []string) (matcher.IHostMatcher, error) {
	ps, err := matcher.ParsePatternSet(patterns)
	if err != nil {
		return nil, fmt.Errorf("address matcher:%s, err:%w", name, err)
	}
	return &addressMatcher{name: name, ps: ps}, nil
}

func createAddressMatcher(name string, args interface{}) (matcher.IHostMatcher, error) {
	c := &config{}
	if err := utils.ConvStructJson(args, c); err != nil {
		return nil, err
	}
	patterns := append([]string(nil), c.Patterns...)
	filePatterns, err := alias.LoadPatternFiles(c.Files)
	if err != nil {
		return nil, err
	}
	patterns = append(patterns, filePatterns...)
	if len(patterns) == 0 {
		return nil, fmt.Errorf("address matcher:%s has no patterns", name)
	}
	return newAddressMatcher(name, patterns)
}

func init() {
	matcher.Register("address", createAddressMatcher)
}
