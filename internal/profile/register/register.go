package register

import (
	_ "github.com/xxxsen/sshgen/internal/profile/directive"
	_ "github.com/xxxsen/sshgen/internal/profile/skip"
)
