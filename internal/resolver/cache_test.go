package resolver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
)

type mockResolver struct {
	count int
	msg   *dns.Msg
	err   error
}

func (m *mockResolver) Name() string {
	return "mock"
}

func (m *mockResolver) Query(ctx context.Context, req *dns.Msg) (*dns.Msg, error) {
	m.count++
	if m.err != nil {
		return nil, m.err
	}
	return m.msg.Copy(), nil
}

func newResponse(ttl uint32) *dns.Msg {
	msg := new(dns.Msg)
	msg.Id = 1
	msg.Response = true
	msg.Answer = append(msg.Answer, &dns.A{
		Hdr: dns.RR_Header{
			Name:   "example.com.",
			Rrtype: dns.TypeA,
			Class:  dns.ClassINET,
			Ttl:    ttl,
		},
		A: net.IPv4(1, 1, 1, 1),
	})
	return msg
}

func newRequest() *dns.Msg {
	req := new(dns.Msg)
	req.SetQuestion("Example.com.", dns.TypeA)
	req.Id = 1234
	return req
}

func TestCacheResolverBasic(t *testing.T) {
	base := &mockResolver{msg: newResponse(30)}
	wrapped, err := TryEnableResolverCache(base, 10)
	if err != nil {
		t.Fatalf("TryEnableResolverCache error: %v", err)
	}
	if wrapped.Name() != "cache(mock)" {
		t.Fatalf("unexpected name: %s", wrapped.Name())
	}

	req := newRequest()
	if _, err := wrapped.Query(context.Background(), req); err != nil {
		t.Fatalf("first query error: %v", err)
	}
	resp, err := wrapped.Query(context.Background(), req)
	if err != nil {
		t.Fatalf("second query error: %v", err)
	}
	if base.count != 1 {
		t.Fatalf("expected base resolver called once, got %d", base.count)
	}
	if resp.Id != req.Id {
		t.Fatalf("cached response should carry request id, got %d", resp.Id)
	}
}

func TestCacheResolverExpire(t *testing.T) {
	base := &mockResolver{msg: newResponse(30)}
	wrapped, err := TryEnableResolverCache(base, 10)
	if err != nil {
		t.Fatalf("TryEnableResolverCache error: %v", err)
	}
	cr := wrapped.(*cacheResolver)
	now := time.Now()
	cr.now = func() time.Time { return now }

	req := newRequest()
	if _, err := wrapped.Query(context.Background(), req); err != nil {
		t.Fatalf("query error: %v", err)
	}
	now = now.Add(31 * time.Second)
	if _, err := wrapped.Query(context.Background(), req); err != nil {
		t.Fatalf("query error: %v", err)
	}
	if base.count != 2 {
		t.Fatalf("expired entry should be refreshed, got %d calls", base.count)
	}
}

func TestCacheResolverSkipNegative(t *testing.T) {
	msg := newResponse(30)
	msg.Rcode = dns.RcodeNameError
	base := &mockResolver{msg: msg}
	wrapped, _ := TryEnableResolverCache(base, 10)
	req := newRequest()
	for i := 0; i < 2; i++ {
		if _, err := wrapped.Query(context.Background(), req); err != nil {
			t.Fatalf("query error: %v", err)
		}
	}
	if base.count != 2 {
		t.Fatalf("negative answers should not be cached, got %d calls", base.count)
	}
}

func TestCacheResolverDisabled(t *testing.T) {
	base := &mockResolver{msg: newResponse(30)}
	wrapped, err := TryEnableResolverCache(base, 0)
	if err != nil {
		t.Fatalf("TryEnableResolverCache error: %v", err)
	}
	if wrapped != base {
		t.Fatalf("cache should be disabled for size 0")
	}
}
