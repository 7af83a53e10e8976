package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/sshgen/internal/sshconfig"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

// Check makes sure path holds a private key ssh can load. Encrypted keys are
// accepted since ssh-agent or a prompt will unlock them at connect time.
func Check(path string) error {
	full, err := sshconfig.ExpandHome(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return fmt.Errorf("read identity file %s: %w", path, err)
	}
	if _, err := ssh.ParsePrivateKey(data); err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			return nil
		}
		return fmt.Errorf("parse identity file %s: %w", path, err)
	}
	return nil
}

// CheckStanzas runs Check once for every distinct IdentityFile.
func CheckStanzas(ctx context.Context, stanzas []*sshconfig.Stanza) error {
	paths := make(map[string]struct{}, 4)
	for _, st := range stanzas {
		if st.IdentityFile == "" {
			continue
		}
		paths[st.IdentityFile] = struct{}{}
	}
	sorted := make([]string, 0, len(paths))
	for p := range paths {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)
	for _, p := range sorted {
		if err := Check(p); err != nil {
			return err
		}
		logutil.GetLogger(ctx).Debug("identity file ok", zap.String("path", p))
	}
	return nil
}
