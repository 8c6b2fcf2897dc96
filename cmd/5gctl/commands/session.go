package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drcoopertbbt/BF3-5G-Demo/cmd/5gctl/cmdutil"
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/cli/output"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
)

var (
	sessionSMFURL string
	sessionSUPI   string
	sessionPSI    int
	sessionDNN    string
	sessionSST    int
	sessionSD     string
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage PDU sessions",
	Long:  `Create and release PDU sessions through the SMF.`,
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Establish a PDU session",
	Long: `Create an SM context at the SMF (TS 23.502 §4.3.2), which anchors
the session on the user plane over N4 and returns the UE IP address.

Examples:
  # Default slice and DNN
  5gctl session create --supi imsi-001010000000001

  # Explicit session id and slice
  5gctl session create --supi imsi-001010000000001 --psi 2 --dnn internet --sst 1 --sd 010203`,
	RunE: runSessionCreate,
}

func init() {
	sessionCreateCmd.Flags().StringVar(&sessionSUPI, "supi", "", "Subscriber identity (required)")
	sessionCreateCmd.Flags().IntVar(&sessionPSI, "psi", 1, "PDU session id (1..15)")
	sessionCreateCmd.Flags().StringVar(&sessionDNN, "dnn", "internet", "Data network name")
	sessionCreateCmd.Flags().IntVar(&sessionSST, "sst", 1, "Slice/service type")
	sessionCreateCmd.Flags().StringVar(&sessionSD, "sd", "010203", "Slice differentiator")
	sessionCreateCmd.Flags().StringVar(&sessionSMFURL, "smf-url", "http://127.0.0.1:9005", "Base URL of the SMF")
	_ = sessionCreateCmd.MarkFlagRequired("supi")

	sessionCmd.AddCommand(sessionCreateCmd)
}

func runSessionCreate(cmd *cobra.Command, args []string) error {
	printer, err := cmdutil.Printer()
	if err != nil {
		return err
	}

	create := models.SMContextCreateData{
		SUPI:         sessionSUPI,
		PDUSessionID: sessionPSI,
		DNN:          sessionDNN,
		SNSSAI:       &models.SNSSAI{SST: sessionSST, SD: sessionSD},
		ANType:       "3GPP_ACCESS",
	}

	var created models.SMContextCreatedData
	smf := cmdutil.Client("SMF", sessionSMFURL)
	if err := smf.Post(cmd.Context(), "/nsmf-pdusession/v1/sm-contexts", create, &created); err != nil {
		return fmt.Errorf("session establishment failed: %s", cmdutil.APIErrorMessage(err))
	}

	if printer.Format() == output.FormatTable {
		if created.Status == "REJECTED" {
			printer.Error(fmt.Sprintf("Session %d rejected: %s", created.PDUSessionID, created.Cause))
			return nil
		}
		printer.Success(fmt.Sprintf("Session %d established for %s, UE IP %s",
			created.PDUSessionID, sessionSUPI, created.UEIPAddress))
		return nil
	}
	return printer.Print(created)
}
