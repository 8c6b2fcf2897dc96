// Package cmdutil carries the shared state and helpers of the 5gctl
// subcommands.
package cmdutil

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/cli/output"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
)

// GlobalFlags holds the values of the persistent root flags, synced
// before any subcommand runs.
type GlobalFlags struct {
	NRFURL  string
	Output  string
	Timeout time.Duration
}

// Flags is the shared flag state for all subcommands.
var Flags GlobalFlags

// Printer builds the output printer for the selected format.
func Printer() (*output.Printer, error) {
	format, err := output.ParseFormat(Flags.Output)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(os.Stdout, format, true), nil
}

// NRFClient returns an SBI client aimed at the registry.
func NRFClient() *sbi.Client {
	return sbi.NewClient("NRF", Flags.NRFURL, Flags.Timeout, nil)
}

// Client returns an SBI client for an arbitrary network function base
// URL, e.g. a directly addressed AMF or SMF.
func Client(name, baseURL string) *sbi.Client {
	return sbi.NewClient(name, baseURL, Flags.Timeout, nil)
}

// APIErrorMessage renders an SBI call error for the operator: protocol
// problems show status, detail and cause; transport errors pass through.
func APIErrorMessage(err error) string {
	if apiErr, ok := sbi.AsAPIError(err); ok {
		parts := []string{fmt.Sprintf("HTTP %d", apiErr.StatusCode)}
		if apiErr.Detail != "" {
			parts = append(parts, apiErr.Detail)
		}
		if apiErr.Cause != "" {
			parts = append(parts, "cause "+apiErr.Cause)
		}
		return strings.Join(parts, ": ")
	}
	return err.Error()
}
