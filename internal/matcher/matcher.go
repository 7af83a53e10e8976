package matcher

import (
	"context"
	"fmt"

	"github.com/xxxsen/sshgen/internal/hosts"
)

type IHostMatcher interface {
	Name() string
	Type() string
	Match(ctx context.Context, entry *hosts.HostEntry) (bool, error)
}

type Factory func(name string, args interface{}) (IHostMatcher, error)

var m = make(map[string]Factory)

func Register(typ string, fac Factory) {
	m[typ] = fac
}

func MakeMatcher(typ string, name string, args interface{}) (IHostMatcher, error) {
	cr, ok := m[typ]
	if !ok {
		return nil, fmt.Errorf("matcher type:%s not found", typ)
	}
	return cr(name, args)
}
