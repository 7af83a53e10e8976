package resolver

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/sshgen/internal/resolver/model"
	"go.uber.org/zap"
)

const defaultQueryTimeout = 3 * time.Second

func init() {
	Register("tcp", basicResolverFactory)
	Register("udp", basicResolverFactory)
	Register("dot", basicResolverFactory)
}

func queryTimeout(params *model.Params) time.Duration {
	if params == nil || params.CustomParams.Timeout <= 0 {
		return defaultQueryTimeout
	}
	return time.Duration(params.CustomParams.Timeout) * time.Millisecond
}

func basicResolverFactory(schema string, host string, params *model.Params) (IDNSResolver, error) {
	if host == "" {
		return nil, fmt.Errorf("%s resolver requires a host", schema)
	}
	switch schema {
	case "udp", "tcp":
		addr, err := ensurePort(host, "53")
		if err != nil {
			return nil, err
		}
		client := &dns.Client{Net: schema, Timeout: queryTimeout(params)}
		return &classicResolver{addr: addr, client: client}, nil
	case "dot":
		addr, err := ensurePort(host, "853")
		if err != nil {
			return nil, err
		}
		hostname, _, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		client := &dns.Client{
			Net:     "tcp-tls",
			Timeout: queryTimeout(params),
			TLSConfig: &tls.Config{
				ServerName: hostname,
				MinVersion: tls.VersionTLS12,
			},
		}
		return &classicResolver{addr: addr, client: client}, nil
	}
	return nil, fmt.Errorf("unsupported dns type:%s", schema)
}

type classicResolver struct {
	addr   string
	client *dns.Client
}

func (r *classicResolver) Name() string {
	return fmt.Sprintf("%s/%s", r.client.Net, r.addr)
}

func (r *classicResolver) Query(ctx context.Context, req *dns.Msg) (*dns.Msg, error) {
	logger := logutil.GetLogger(ctx).With(
		zap.String("resolver", r.Name()),
		zap.String("server_addr", r.addr),
	)
	logger.Debug("classic resolver start query")
	resp, _, err := r.client.ExchangeContext(ctx, req, r.addr)
	if err != nil {
		logger.Error("classic resolver query failed", zap.Error(err))
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("no response from %s", r.addr)
	}
	logger.Debug("classic resolver query success", zap.Int("answer_count", len(resp.Answer)))
	return resp, nil
}

func ensurePort(host string, defaultPort string) (string, error) {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host, nil
	}
	cleanHost := strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if cleanHost == "" {
		return "", fmt.Errorf("invalid resolver host:%s", host)
	}
	return net.JoinHostPort(cleanHost, defaultPort), nil
}
