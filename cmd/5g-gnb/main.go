package main

import (
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/nf/gnb"
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
		NFType:  "GNB",
		Use:     "5g-gnb",
		Short:   "5G radio access network gNodeB",
		Version: version,
		Commit:  commit,
		Date:    date,
		New: func(cfg *config.Config) (nfcmd.Service, error) {
			return gnb.New(cfg)
		},
	})
}
