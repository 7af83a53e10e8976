package hosts

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/miekg/dns"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// HostEntry is a single alias/address pair read from an inventory file.
type HostEntry struct {
	Alias   string
	Address string
	File    string
	Line    int
}

// IsIP reports whether the entry address is an ip literal.
func (e *HostEntry) IsIP() bool {
	return net.ParseIP(e.Address) != nil
}

func (e *HostEntry) String() string {
	return fmt.Sprintf("%s(%s) at %s:%d", e.Alias, e.Address, e.File, e.Line)
}

// LoadEntriesFromFile reads all entries from one inventory file.
func LoadEntriesFromFile(path string) ([]*HostEntry, error) {
	path = strings.TrimSpace(path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hosts: open file %s: %w", path, err)
	}
	defer f.Close()
	return ParseEntries(f, path)
}

// ParseEntries reads entries from r, name is only used in error messages.
func ParseEntries(r io.Reader, name string) ([]*HostEntry, error) {
	rs := make([]*HostEntry, 0, 32)
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("hosts: missing address column in %s:%d", name, lineNum)
		}
		alias := fields[0]
		address := normalizeAddress(fields[1])
		if !isValidAddress(address) {
			return nil, fmt.Errorf("hosts: invalid address %q in %s:%d", fields[1], name, lineNum)
		}
		rs = append(rs, &HostEntry{
			Alias:   alias,
			Address: address,
			File:    name,
			Line:    lineNum,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("hosts: read file %s: %w", name, err)
	}
	return rs, nil
}

// LoadEntriesFromFiles reads every file in order and drops duplicated aliases,
// the first occurrence wins since ssh applies the first matching Host block.
func LoadEntriesFromFiles(ctx context.Context, files []string) ([]*HostEntry, error) {
	rs := make([]*HostEntry, 0, 32)
	for _, path := range files {
		if strings.TrimSpace(path) == "" {
			continue
		}
		items, err := LoadEntriesFromFile(path)
		if err != nil {
			return nil, err
		}
		rs = append(rs, items...)
	}
	rs = Dedup(ctx, rs)
	if len(rs) == 0 {
		return nil, fmt.Errorf("hosts: no entries found in files:%v", files)
	}
	return rs, nil
}

// Dedup keeps the first entry of every alias.
func Dedup(ctx context.Context, in []*HostEntry) []*HostEntry {
	seen := make(map[string]*HostEntry, len(in))
	out := make([]*HostEntry, 0, len(in))
	for _, item := range in {
		key := strings.ToLower(item.Alias)
		if prev, ok := seen[key]; ok {
			logutil.GetLogger(ctx).Warn("duplicate host alias, skip",
				zap.String("alias", item.Alias),
				zap.String("kept", fmt.Sprintf("%s:%d", prev.File, prev.Line)),
				zap.String("dropped", fmt.Sprintf("%s:%d", item.File, item.Line)),
			)
			continue
		}
		seen[key] = item
		out = append(out, item)
	}
	return out
}

func isValidAddress(addr string) bool {
	if addr == "" {
		return false
	}
	if net.ParseIP(addr) != nil {
		return true
	}
	if _, ok := dns.IsDomainName(addr); !ok {
		return false
	}
	// IsDomainName only checks lengths, "user@host" or "10.0.0.1:22" pass it
	for _, label := range strings.Split(addr, ".") {
		if !isValidLabel(label) {
			return false
		}
	}
	// reject things like "10.0.0.300" which pass the domain name check
	return !isAllNumeric(addr)
}

// isValidLabel expects a lower-cased label made of [a-z0-9_-] without a
// leading or trailing hyphen.
func isValidLabel(label string) bool {
	if label == "" || label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for _, c := range label {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

func isAllNumeric(addr string) bool {
	for _, c := range addr {
		if (c < '0' || c > '9') && c != '.' {
			return false
		}
	}
	return true
}

func normalizeAddress(addr string) string {
	a := strings.TrimSpace(addr)
	a = strings.TrimPrefix(a, "[")
	a = strings.TrimSuffix(a, "]")
	if net.ParseIP(a) != nil {
		return a
	}
	return strings.ToLower(strings.TrimSuffix(a, "."))
}
