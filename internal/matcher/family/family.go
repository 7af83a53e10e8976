package family

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/xxxsen/common/utils"
	"github.com/xxxsen/sshgen/internal/hosts"
	"github.com/xxxsen/sshgen/internal/matcher"
)

const (
	FamilyIPv4 = "ipv4"
	FamilyIPv6 = "ipv6"
	FamilyName = "name"
)

type familyMatcher struct {
	name string
	fams map[string]struct{}
}

func (f *familyMatcher) Name() string {
	return f.name
}

func (f *familyMatcher) Type() string {
	return "family"
}

func (f *familyMatcher) Match(ctx context.Context, entry *hosts.HostEntry) (bool, error) {
	_, ok := f.fams[familyOf(entry.Address)]
	return ok, nil
}

func familyOf(addr string) string {
	ip := net.ParseIP(addr)
	switch {
	case ip == nil:
		return FamilyName
	case ip.To4() != nil:
		return FamilyIPv4
	default:
		return FamilyIPv6
	}
}

func newFamilyMatcher(name string, fams []string) (matcher.IHostMatcher, error) {
	t := make(map[string]struct{}, len(fams))
	for _, item := range fams {
		item = strings.ToLower(strings.TrimSpace(item))
		switch item {
		case FamilyIPv4, FamilyIPv6, FamilyName:
			t[item] = struct{}{}
		default:
			return nil, fmt.Errorf("family matcher:%s unknown family:%s", name, item)
		}
	}
	if len(t) == 0 {
		return nil, fmt.Errorf("family matcher:%s has no families", name)
	}
	return &familyMatcher{name: name, fams: t}, nil
}

func createFamilyMatcher(name string, args interface{}) (matcher.IHostMatcher, error) {
	c := &config{}
	if err := utils.ConvStructJson(args, c); err != nil {
		return nil, err
	}
	return newFamilyMatcher(name, c.Families)
}

func init() {
	matcher.Register("family", createFamilyMatcher)
}
