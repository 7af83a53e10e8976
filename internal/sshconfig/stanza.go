package sshconfig

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

const (
	DefaultPreferredAuthentications = "publickey"
	indent                          = "  "
)

// Stanza is one Host block of an ssh client config.
type Stanza struct {
	Host                     string
	HostName                 string
	PreferredAuthentications string
	IdentityFile             string
	User                     string
	Options                  map[string]string
}

// Clone returns a deep copy so profiles can modify it freely.
func (s *Stanza) Clone() *Stanza {
	c := *s
	c.Options = make(map[string]string, len(s.Options))
	for k, v := range s.Options {
		c.Options[k] = v
	}
	return &c
}

// SetOption sets an extra directive, an empty value removes it.
func (s *Stanza) SetOption(key, value string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	if s.Options == nil {
		s.Options = make(map[string]string)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		delete(s.Options, key)
		return
	}
	s.Options[key] = value
}

// WriteTo renders the stanza followed by a blank separator line.
func (s *Stanza) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Host %s\n", s.Host)
	writeDirective(&sb, "HostName", s.HostName)
	writeDirective(&sb, "PreferredAuthentications", s.PreferredAuthentications)
	writeDirective(&sb, "IdentityFile", s.IdentityFile)
	writeDirective(&sb, "User", s.User)
	keys := make([]string, 0, len(s.Options))
	for k := range s.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeDirective(&sb, k, s.Options[k])
	}
	sb.WriteString("\n")
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func writeDirective(sb *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	sb.WriteString(indent)
	sb.WriteString(key)
	sb.WriteString(" ")
	sb.WriteString(value)
	sb.WriteString("\n")
}

// Render writes all stanzas in order.
func Render(w io.Writer, stanzas []*Stanza) error {
	bw := bufio.NewWriter(w)
	for _, st := range stanzas {
		if _, err := st.WriteTo(bw); err != nil {
			return fmt.Errorf("render host %s: %w", st.Host, err)
		}
	}
	return bw.Flush()
}

// RenderString is a helper for callers that need the text in memory.
func RenderString(stanzas []*Stanza) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, stanzas); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ValidateOptionKey rejects keys that would break the stanza layout.
func ValidateOptionKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("empty option key")
	}
	if strings.ContainsAny(key, " \t\r\n=") {
		return fmt.Errorf("invalid option key:%q", key)
	}
	if strings.EqualFold(key, "host") || strings.EqualFold(key, "match") {
		return fmt.Errorf("option key:%s would start a new block", key)
	}
	// ssh keeps the first value of a keyword, a second line would be ignored
	switch strings.ToLower(key) {
	case "hostname":
		return fmt.Errorf("option key:%s is taken from the host address", key)
	case "user", "identityfile", "preferredauthentications":
		return fmt.Errorf("option key:%s has a dedicated field, use user/identity_file/preferred_authentications instead", key)
	}
	return nil
}
