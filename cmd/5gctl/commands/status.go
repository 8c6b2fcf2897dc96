package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/drcoopertbbt/BF3-5G-Demo/cmd/5gctl/cmdutil"
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/cli/health"
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/cli/timeutil"
)

const defaultTimeout = 5 * time.Second

// networkFunction names one pollable function and its default address.
type networkFunction struct {
	Name string
	URL  string
}

// defaultNetwork lists the functions of a local all-defaults deployment
// in boot order.
var defaultNetwork = []networkFunction{
	{"NRF", "http://127.0.0.1:8000"},
	{"AMF", "http://127.0.0.1:9001"},
	{"UPF", "http://127.0.0.1:9002"},
	{"AUSF", "http://127.0.0.1:9003"},
	{"UDM", "http://127.0.0.1:9004"},
	{"SMF", "http://127.0.0.1:9005"},
	{"PCF", "http://127.0.0.1:9007"},
	{"GNB", "http://127.0.0.1:38412"},
	{"CU", "http://127.0.0.1:38472"},
	{"DU", "http://127.0.0.1:38473"},
}

// statusRow is one function's poll result for rendering.
type statusRow struct {
	NF         string `json:"nf"`
	URL        string `json:"url"`
	Status     string `json:"status"`
	InstanceID string `json:"nfInstanceId,omitempty"`
	Uptime     string `json:"uptime,omitempty"`
}

// StatusList renders the poll results as a table.
type StatusList []statusRow

// Headers implements TableRenderer.
func (sl StatusList) Headers() []string {
	return []string{"NF", "URL", "STATUS", "INSTANCE", "UPTIME"}
}

// Rows implements TableRenderer.
func (sl StatusList) Rows() [][]string {
	rows := make([][]string, 0, len(sl))
	for _, s := range sl {
		rows = append(rows, []string{s.NF, s.URL, s.Status, s.InstanceID, s.Uptime})
	}
	return rows
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the health of every network function",
	Long: `Poll the /health endpoint of every network function and summarize
the state of the emulated network.

Functions that do not answer within the timeout are reported as DOWN.

Examples:
  # Poll the default local deployment
  5gctl status

  # As JSON
  5gctl status -o json`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	printer, err := cmdutil.Printer()
	if err != nil {
		return err
	}

	rows := make(StatusList, 0, len(defaultNetwork))
	for _, nf := range defaultNetwork {
		rows = append(rows, pollFunction(cmd.Context(), nf))
	}

	return printer.Print(rows)
}

// pollFunction fetches one function's health, mapping transport failures
// to a DOWN row instead of an error.
func pollFunction(ctx context.Context, nf networkFunction) statusRow {
	row := statusRow{NF: nf.Name, URL: nf.URL}

	var resp health.Response
	if err := cmdutil.Client(nf.Name, nf.URL).Get(ctx, "/health", &resp); err != nil {
		row.Status = "DOWN"
		return row
	}

	row.Status = "UP"
	if !resp.Healthy() {
		row.Status = resp.Status
	}
	row.InstanceID = resp.NFInstanceID
	row.Uptime = timeutil.FormatUptime(resp.Uptime)
	return row
}
