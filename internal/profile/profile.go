package profile

import (
	"context"
	"fmt"

	"github.com/xxxsen/sshgen/internal/sshconfig"
)

// IProfile adjusts the stanza of a matched host, returning false drops the host.
type IProfile interface {
	Name() string
	Type() string
	Apply(ctx context.Context, st *sshconfig.Stanza) (bool, error)
}

type Factory func(name string, args interface{}) (IProfile, error)

var m = make(map[string]Factory)

func Register(typ string, fac Factory) {
	m[typ] = fac
}

func MakeProfile(typ string, name string, args interface{}) (IProfile, error) {
	cr, ok := m[typ]
	if !ok {
		return nil, fmt.Errorf("profile type:%s not found", typ)
	}
	return cr(name, args)
}
