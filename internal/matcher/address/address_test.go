package address

import (
	"context"
	"testing"

	"github.com/xxxsen/sshgen/internal/hosts"
)

func TestAddressMatcher(t *testing.T) {
	m, err := newAddressMatcher("lab", []string{"cidr:192.168.10.0/24", "suffix:.lab.internal"})
	if err != nil {
		t.Fatalf("newAddressMatcher error: %v", err)
	}
	tests := []struct {
		address  string
		expected bool
	}{
		{"192.168.10.7", true},
		{"192.168.11.7", false},
		{"nas.lab.internal", true},
		{"nas.example.com", false},
	}
	for _, tc := range tests {
		ok, err := m.Match(context.Background(), &hosts.HostEntry{Alias: "x", Address: tc.address})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.address, err)
		}
		if ok != tc.expected {
			t.Fatalf("%s: expected %v, got %v", tc.address, tc.expected, ok)
		}
	}
}

func TestCreateAddressMatcherNoPatterns(t *testing.T) {
	if _, err := createAddressMatcher("empty", nil); err == nil {
		t.Fatalf("expected error when no patterns configured")
	}
}
