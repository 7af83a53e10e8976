package matcher

import (
	"fmt"
	"net/netip"
	"path"
	"regexp"
	"strings"
)

// PatternSet matches a name against full/suffix/keyword/regexp/glob/cidr rules.
// A rule without a kind prefix is treated as a suffix rule.
type PatternSet struct {
	full   map[string]struct{}
	suffix []string
	kw     []string
	reg    []*regexp.Regexp
	glob   []string
	cidr   []netip.Prefix
}

func ParsePatternSet(rules []string) (*PatternSet, error) {
	ps := &PatternSet{full: make(map[string]struct{})}
	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		if len(rule) == 0 {
			return nil, fmt.Errorf("empty pattern found")
		}
		kind, data, ok := strings.Cut(rule, ":")
		if !ok {
			kind, data = "suffix", rule
		}
		if data == "" {
			return nil, fmt.Errorf("pattern %q has no value", rule)
		}
		switch kind {
		case "suffix":
			ps.suffix = append(ps.suffix, strings.ToLower(data))
		case "keyword":
			ps.kw = append(ps.kw, strings.ToLower(data))
		case "full":
			ps.full[strings.ToLower(data)] = struct{}{}
		case "glob":
			if _, err := path.Match(data, ""); err != nil {
				return nil, fmt.Errorf("invalid glob pattern:%s, err:%w", data, err)
			}
			ps.glob = append(ps.glob, strings.ToLower(data))
		case "regexp":
			// names are lower-cased before matching
			exp, err := regexp.Compile("(?i)" + data)
			if err != nil {
				return nil, err
			}
			ps.reg = append(ps.reg, exp)
		case "cidr":
			prefix, err := netip.ParsePrefix(data)
			if err != nil {
				return nil, fmt.Errorf("invalid cidr:%s, err:%w", data, err)
			}
			ps.cidr = append(ps.cidr, prefix.Masked())
		default:
			// ipv6 literals contain ':' too, keep them as suffix rules
			if _, err := netip.ParseAddr(rule); err == nil {
				ps.suffix = append(ps.suffix, strings.ToLower(rule))
				continue
			}
			return nil, fmt.Errorf("unknown pattern kind:%s", kind)
		}
	}
	return ps, nil
}

func (p *PatternSet) HasCIDR() bool {
	return len(p.cidr) > 0
}

func (p *PatternSet) Match(name string) bool {
	name = NormalizeName(name)
	if _, ok := p.full[name]; ok {
		return true
	}
	for _, suffix := range p.suffix {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	for _, kw := range p.kw {
		if strings.Contains(name, kw) {
			return true
		}
	}
	for _, g := range p.glob {
		if ok, _ := path.Match(g, name); ok {
			return true
		}
	}
	for _, reg := range p.reg {
		if reg.MatchString(name) {
			return true
		}
	}
	if len(p.cidr) > 0 {
		addr, err := netip.ParseAddr(name)
		if err != nil {
			return false
		}
		addr = addr.Unmap()
		for _, prefix := range p.cidr {
			if prefix.Contains(addr) {
				return true
			}
		}
	}
	return false
}

func NormalizeName(name string) string {
	name = strings.TrimSpace(strings.TrimSuffix(name, "."))
	return strings.ToLower(name)
}
