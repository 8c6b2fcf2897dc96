package main

import (
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/nf/pcf"
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
		NFType:  "PCF",
		Use:     "5g-pcf",
		Short:   "5G core policy control function",
		Version: version,
		Commit:  commit,
		Date:    date,
		New: func(cfg *config.Config) (nfcmd.Service, error) {
			return pcf.New(cfg)
		},
	})
}
