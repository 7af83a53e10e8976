package directive

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/utils"
	"github.com/xxxsen/sshgen/internal/profile"
	"github.com/xxxsen/sshgen/internal/sshconfig"
	"go.uber.org/zap"
)

type directiveProfile struct {
	name string
	c    *config
}

func (d *directiveProfile) Name() string {
	return d.name
}

func (d *directiveProfile) Type() string {
	return "directive"
}

func (d *directiveProfile) Apply(ctx context.Context, st *sshconfig.Stanza) (bool, error) {
	if st == nil {
		return false, fmt.Errorf("stanza is nil")
	}
	if d.c.User != "" {
		st.User = d.c.User
	}
	if d.c.IdentityFile != "" {
		st.IdentityFile = d.c.IdentityFile
	}
	if d.c.PreferredAuthentications != "" {
		st.PreferredAuthentications = d.c.PreferredAuthentications
	}
	for k, v := range d.c.Options {
		st.SetOption(k, v)
	}
	logutil.GetLogger(ctx).Debug("apply directive profile",
		zap.String("profile", d.name), zap.String("host", st.Host))
	return true, nil
}

func createDirectiveProfile(name string, args interface{}) (profile.IProfile, error) {
	c := &config{}
	if err := utils.ConvStructJson(args, c); err != nil {
		return nil, err
	}
	c.User = strings.TrimSpace(c.User)
	c.IdentityFile = strings.TrimSpace(c.IdentityFile)
	c.PreferredAuthentications = strings.TrimSpace(c.PreferredAuthentications)
	for k := range c.Options {
		if err := sshconfig.ValidateOptionKey(k); err != nil {
			return nil, fmt.Errorf("directive profile:%s, err:%w", name, err)
		}
	}
	if c.User == "" && c.IdentityFile == "" && c.PreferredAuthentications == "" && len(c.Options) == 0 {
		return nil, fmt.Errorf("directive profile:%s changes nothing", name)
	}
	return &directiveProfile{name: name, c: c}, nil
}

func init() {
	profile.Register("directive", createDirectiveProfile)
}
