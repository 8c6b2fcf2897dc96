// Package nfcmd is the shared entrypoint for the network function
// binaries. Each cmd/<nf> main wires its service constructor into an
// Options value and calls Execute; the runner owns the cobra command
// tree, configuration loading, logging, telemetry, the SBI server, and
// NRF registration so the binaries stay a few lines each.
package nfcmd

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/nrfclient"
)

// Service is the contract every network function implements. The runner
// drives the lifecycle; the service only contributes its identity, its
// HTTP surface, and its background work.
type Service interface {
	// Type reports which network function this is.
	Type() models.NFType

	// InstanceID returns the UUID the function registers under.
	InstanceID() string

	// Profile returns the NRF registration profile, or nil when the
	// function does not register (the NRF itself).
	Profile() *models.NFProfile

	// HealthDetails contributes function specific fields to /health.
	HealthDetails() map[string]any

	// Routes mounts the function's endpoints on the SBI router.
	Routes(r chi.Router)

	// Start launches background workers. It must not block.
	Start(ctx context.Context) error

	// Stop halts background workers, waiting up to the configured
	// shutdown timeout.
	Stop(ctx context.Context) error
}

// registryUser is implemented by services that talk to peer functions
// through NRF discovery.
type registryUser interface {
	SetRegistry(*nrfclient.Client)
}

// Options describes one network function binary.
type Options struct {
	// NFType is the function type the binary owns (e.g. "AMF").
	NFType string

	// Use is the binary name shown in help output (e.g. "5g-amf").
	Use string

	// Short is the one line description for the root command.
	Short string

	// Build information injected via ldflags.
	Version string
	Commit  string
	Date    string

	// New constructs the service from a loaded configuration.
	New func(cfg *config.Config) (Service, error)
}

// Execute runs the command tree for one network function binary and
// exits non-zero on error. This is the only call a main needs.
func Execute(opts Options) {
	if err := NewRootCommand(opts).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCommand builds the cobra command tree for a network function
// binary. Running the root without a subcommand starts the function.
func NewRootCommand(opts Options) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   opts.Use,
		Short: opts.Short,
		Long: fmt.Sprintf(`%s

Part of the 5G standalone core network emulator. The %s loads its
configuration from a YAML file (see "%s start --help"), exposes its
service-based interface over HTTP, and registers with the NRF.`,
			opts.Short, opts.NFType, opts.Use),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd.Context(), opts, cfgFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: $XDG_CONFIG_HOME/5g/<nf>.yaml)")

	startCmd := &cobra.Command{
		Use:   "start",
		Short: fmt.Sprintf("Start the %s", opts.NFType),
		Long: fmt.Sprintf(`Start the %s with the specified configuration.

Use --config to point at a custom configuration file, or rely on the
default location. Every setting can also be overridden through FIVEG_*
environment variables, e.g. FIVEG_LOGGING_LEVEL=DEBUG.`, opts.NFType),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd.Context(), opts, cfgFile)
		},
	}

	var versionShort bool
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			if versionShort {
				fmt.Println(opts.Version)
				return
			}

			fmt.Printf("%s %s\n", opts.Use, opts.Version)
			fmt.Printf("  Commit:     %s\n", opts.Commit)
			fmt.Printf("  Built:      %s\n", opts.Date)
			fmt.Printf("  Go version: %s\n", runtime.Version())
			fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show only version number")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}
