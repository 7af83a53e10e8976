package resolver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/miekg/dns"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type cacheResolver struct {
	next  IDNSResolver
	mu    sync.Mutex
	cache *lru.Cache[string, *cacheEntry]
	now   func() time.Time
}

type cacheEntry struct {
	msg    *dns.Msg
	expire time.Time
}

// TryEnableResolverCache wraps in with an lru cache holding up to size answers,
// in is returned as is when size is not positive.
func TryEnableResolverCache(in IDNSResolver, size int) (IDNSResolver, error) {
	if in == nil || size <= 0 {
		return in, nil
	}
	c, err := lru.New[string, *cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("init lru cache: %w", err)
	}
	return &cacheResolver{next: in, cache: c, now: time.Now}, nil
}

func (c *cacheResolver) Name() string {
	return fmt.Sprintf("cache(%s)", c.next.Name())
}

func (c *cacheResolver) Query(ctx context.Context, req *dns.Msg) (*dns.Msg, error) {
	key := buildCacheKey(req)
	if key != "" {
		if msg, ok := c.get(key); ok {
			logutil.GetLogger(ctx).Debug("dns cache hit", zap.String("key", key))
			msg.Id = req.Id
			return msg, nil
		}
	}
	resp, err := c.next.Query(ctx, req)
	if err != nil {
		return nil, err
	}
	if key != "" {
		c.store(key, resp)
	}
	return resp, nil
}

func (c *cacheResolver) get(key string) (*dns.Msg, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expire) {
		c.cache.Remove(key)
		return nil, false
	}
	return entry.msg.Copy(), true
}

func (c *cacheResolver) store(key string, msg *dns.Msg) {
	if msg.Rcode != dns.RcodeSuccess {
		return
	}
	ttl, ok := extractTTL(msg)
	if !ok || ttl == 0 {
		return
	}
	entry := &cacheEntry{
		msg:    msg.Copy(),
		expire: c.now().Add(time.Duration(ttl) * time.Second),
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(key, entry)
}

func buildCacheKey(req *dns.Msg) string {
	if req == nil || len(req.Question) == 0 {
		return ""
	}
	q := req.Question[0]
	domain := strings.ToLower(strings.TrimSuffix(q.Name, "."))
	if domain == "" {
		return ""
	}
	return fmt.Sprintf("%s|%d|%d", domain, q.Qtype, q.Qclass)
}

func extractTTL(msg *dns.Msg) (uint32, bool) {
	var minTTL uint32
	found := false
	for _, rr := range msg.Answer {
		if !found || rr.Header().Ttl < minTTL {
			minTTL = rr.Header().Ttl
			found = true
		}
	}
	return minTTL, found
}
