package register

import (
	_ "github.com/xxxsen/sshgen/internal/matcher/address"
	_ "github.com/xxxsen/sshgen/internal/matcher/alias"
	_ "github.com/xxxsen/sshgen/internal/matcher/family"
)
