package resolver

import (
	"context"
	"fmt"
	"net"

	"github.com/miekg/dns"
)

// LookupAddress resolves name to a single address. The preferred record type is
// tried first and the other family is used as fallback.
func LookupAddress(ctx context.Context, r IDNSResolver, name string, preferIPv6 bool) (net.IP, error) {
	order := []uint16{dns.TypeA, dns.TypeAAAA}
	if preferIPv6 {
		order = []uint16{dns.TypeAAAA, dns.TypeA}
	}
	var lastErr error
	for _, qtype := range order {
		ip, err := lookupType(ctx, r, name, qtype)
		if err == nil {
			return ip, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, fmt.Errorf("lookup %s: %w", name, lastErr)
}

func lookupType(ctx context.Context, r IDNSResolver, name string, qtype uint16) (net.IP, error) {
	req := new(dns.Msg)
	req.SetQuestion(dns.Fqdn(name), qtype)
	req.RecursionDesired = true
	resp, err := r.Query(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("%s query got rcode %s", dns.TypeToString[qtype], dns.RcodeToString[resp.Rcode])
	}
	// answers may start with a CNAME chain, take the first address record
	for _, rr := range resp.Answer {
		switch v := rr.(type) {
		case *dns.A:
			if qtype == dns.TypeA {
				return v.A, nil
			}
		case *dns.AAAA:
			if qtype == dns.TypeAAAA {
				return v.AAAA, nil
			}
		}
	}
	return nil, fmt.Errorf("no %s record", dns.TypeToString[qtype])
}
