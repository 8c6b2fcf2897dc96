package main

import (
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/nf/nrf"
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
		NFType:  "NRF",
		Use:     "5g-nrf",
		Short:   "5G core network repository function",
		Version: version,
		Commit:  commit,
		Date:    date,
		New: func(cfg *config.Config) (nfcmd.Service, error) {
			return nrf.New(cfg)
		},
	})
}
