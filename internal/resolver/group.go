package resolver

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync/atomic"

	"github.com/miekg/dns"
	"golang.org/x/sync/errgroup"
)

type groupResolver struct {
	res        []IDNSResolver
	concurrent int
}

func (p *groupResolver) Name() string {
	names := make([]string, 0, len(p.res))
	for _, r := range p.res {
		names = append(names, r.Name())
	}
	return fmt.Sprintf("group(%s)", strings.Join(names, ","))
}

// Query sends req to up to concurrent resolvers at once, the first success wins.
func (p *groupResolver) Query(ctx context.Context, req *dns.Msg) (*dns.Msg, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	// a failing resolver must not cancel its siblings, so no errgroup.WithContext here
	var eg errgroup.Group
	var result atomic.Pointer[dns.Msg]
	pos := rand.IntN(len(p.res))
	for i := 0; i < p.concurrent; i++ {
		res := p.res[(i+pos)%len(p.res)]
		eg.Go(func() error {
			rs, err := res.Query(ctx, req.Copy())
			if err != nil {
				return fmt.Errorf("%s: %w", res.Name(), err)
			}
			// nxdomain is a real answer, servfail/refused leave room for a sibling
			if rs.Rcode != dns.RcodeSuccess && rs.Rcode != dns.RcodeNameError {
				return fmt.Errorf("%s: got rcode %s", res.Name(), dns.RcodeToString[rs.Rcode])
			}
			result.CompareAndSwap(nil, rs)
			cancel()
			return nil
		})
	}
	err := eg.Wait()
	if v := result.Load(); v != nil {
		return v, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("no err return and no dns record found?")
}

// NewGroupResolver wraps res, a single resolver is returned unchanged.
func NewGroupResolver(res []IDNSResolver, concurrent int) (IDNSResolver, error) {
	if len(res) == 0 {
		return nil, fmt.Errorf("no resolver configured")
	}
	if len(res) == 1 {
		return res[0], nil
	}
	if concurrent <= 0 || concurrent > len(res) {
		concurrent = len(res)
	}
	return &groupResolver{res: res, concurrent: concurrent}, nil
}
