package main

import (
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/nf/cu"
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/nfcmd"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	nfcmd.Execute(nfcmd.Options{
		NFType:  "CU",
		Use:     "5g-cu",
		Short:   "5G gNodeB central unit",
		Version: version,
		Commit:  commit,
		Date:    date,
		New: func(cfg *config.Config) (nfcmd.Service, error) {
			return cu.New(cfg)
		},
	})
}
