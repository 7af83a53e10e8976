package alias

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/xxxsen/common/utils"
	"github.com/xxxsen/sshgen/internal/hosts"
	"github.com/xxxsen/sshgen/internal/matcher"
)

type aliasMatcher struct {
	name string
	ps   *matcher.PatternSet
}

func (a *aliasMatcher) Name() string {
	return a.name
}

func (a *aliasMatcher) Type() string {
	return "alias"
}

func (a *aliasMatcher) Match(ctx context.Context, entry *hosts.HostEntry) (bool, error) {
	return a.ps.Match(entry.Alias), nil
}

func newAliasMatcher(name string, patterns []string) (matcher.IHostMatcher, error) {
	ps, err := matcher.ParsePatternSet(patterns)
	if err != nil {
		return nil, fmt.Errorf("alias matcher:%s, err:%w", name, err)
	}
	if ps.HasCIDR() {
		return nil, fmt.Errorf("alias matcher:%s does not support cidr patterns", name)
	}
	return &aliasMatcher{name: name, ps: ps}, nil
}

func createAliasMatcher(name string, args interface{}) (matcher.IHostMatcher, error) {
	c := &config{}
	if err := utils.ConvStructJson(args, c); err != nil {
		return nil, err
	}
	patterns := make([]string, 0, len(c.Patterns))
	patterns = append(patterns, c.Patterns...)
	filePatterns, err := LoadPatternFiles(c.Files)
	if err != nil {
		return nil, err
	}
	patterns = append(patterns, filePatterns...)
	if len(patterns) == 0 {
		return nil, fmt.Errorf("alias matcher:%s has no patterns", name)
	}
	return newAliasMatcher(name, patterns)
}

func init() {
	matcher.Register("alias", createAliasMatcher)
}

// LoadPatternFiles reads one pattern per line, skipping blanks and comments.
func LoadPatternFiles(files []string) ([]string, error) {
	var patterns []string
	for _, path := range files {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open pattern file %s: %w", path, err)
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, line)
		}
		if err := scanner.Err(); err != nil {
			f.Close()
			return nil, fmt.Errorf("read pattern file %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("close pattern file %s: %w", path, err)
		}
	}
	return patterns, nil
}
