package main

import (
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/nf/amf"
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
		NFType:  "AMF",
		Use:     "5g-amf",
		Short:   "5G core access and mobility management function",
		Version: version,
		Commit:  commit,
		Date:    date,
		New: func(cfg *config.Config) (nfcmd.Service, error) {
			return amf.New(cfg)
		},
	})
}
