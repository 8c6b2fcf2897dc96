package main

import (
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/nf/du"
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
		NFType:  "DU",
		Use:     "5g-du",
		Short:   "5G gNodeB distributed unit",
		Version: version,
		Commit:  commit,
		Date:    date,
		New: func(cfg *config.Config) (nfcmd.Service, error) {
			return du.New(cfg)
		},
	})
}
