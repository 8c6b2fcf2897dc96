package nfcmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandLayout(t *testing.T) {
	root := NewRootCommand(Options{
		NFType:  "AMF",
		Use:     "5g-amf",
		Short:   "5G core access and mobility management function",
		Version: "1.2.3",
	})

	assert.Equal(t, "5g-amf", root.Use)
	require.NotNil(t, root.PersistentFlags().Lookup("config"))

	subcommands := make(map[string]bool)
	for _, c := range root.Commands() {
		subcommands[c.Name()] = true
	}
	assert.True(t, subcommands["start"])
	assert.True(t, subcommands["version"])
}

func TestWatchablePathPrefersExplicitFile(t *testing.T) {
	assert.Equal(t, "/etc/fiveg/amf.yaml", watchablePath("/etc/fiveg/amf.yaml"))
}
