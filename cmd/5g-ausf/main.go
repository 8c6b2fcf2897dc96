package main

import (
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/nf/ausf"
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
		NFType:  "AUSF",
		Use:     "5g-ausf",
		Short:   "5G core authentication server function",
		Version: version,
		Commit:  commit,
		Date:    date,
		New: func(cfg *config.Config) (nfcmd.Service, error) {
			return ausf.New(cfg)
		},
	})
}
