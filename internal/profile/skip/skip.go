package skip

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/sshgen/internal/profile"
	"github.com/xxxsen/sshgen/internal/sshconfig"
	"go.uber.org/zap"
)

type skipProfile struct {
	name string
}

func (s *skipProfile) Name() string {
	return s.name
}

func (s *skipProfile) Type() string {
	return "skip"
}

func (s *skipProfile) Apply(ctx context.Context, st *sshconfig.Stanza) (bool, error) {
	logutil.GetLogger(ctx).Debug("skip host", zap.String("profile", s.name), zap.String("host", st.Host))
	return false, nil
}

func newSkipProfile(name string) profile.IProfile {
	return &skipProfile{name: name}
}

func createSkipProfile(name string, args interface{}) (profile.IProfile, error) {
	return newSkipProfile(name), nil
}

func init() {
	profile.Register("skip", createSkipProfile)
}
