package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drcoopertbbt/BF3-5G-Demo/cmd/5gctl/cmdutil"
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/cli/output"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/nas"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
)

var (
	registerAMFURL string
	registerSUCI   string
	registerRes    string
	registerIMEISV string
)

// registrationOutcome is the final state of a driven registration.
type registrationOutcome struct {
	Status string `json:"status"`
	SUPI   string `json:"supi,omitempty"`
	GUTI   string `json:"guti,omitempty"`
	Detail string `json:"detail,omitempty"`
}

var registerUECmd = &cobra.Command{
	Use:   "register-ue",
	Short: "Drive a UE registration against the AMF",
	Long: `Play the UE side of the registration procedure (TS 23.502 §4.2.2.2):
send a Registration Request with the given SUCI, answer a 5G-AKA
challenge when one comes back, and complete the security mode procedure.

The challenge answer defaults to the derivation the AUSF applies when no
subscriber store is reachable. Against a full deployment the subscriber
key is secret, so pass the expected response with --res or expect an
AUTHENTICATION_FAILURE outcome.

Examples:
  # Register a roster UE
  5gctl register-ue --suci suci-0-001-01-0000-0-0-0000000001

  # Answer the challenge with a known response
  5gctl register-ue --suci suci-0-001-01-0000-0-0-0000000001 --res 1a2b3c...`,
	RunE: runRegisterUE,
}

func init() {
	registerUECmd.Flags().StringVar(&registerSUCI, "suci", "", "Concealed subscriber identity (required)")
	registerUECmd.Flags().StringVar(&registerAMFURL, "amf-url", "http://127.0.0.1:9001", "Base URL of the AMF")
	registerUECmd.Flags().StringVar(&registerRes, "res", "", "Authentication response to the 5G-AKA challenge")
	registerUECmd.Flags().StringVar(&registerIMEISV, "imeisv", "3534900698731412", "IMEISV reported in Security Mode Complete")
	_ = registerUECmd.MarkFlagRequired("suci")
}

func runRegisterUE(cmd *cobra.Command, args []string) error {
	printer, err := cmdutil.Printer()
	if err != nil {
		return err
	}

	outcome, err := driveRegistration(cmd.Context(), cmdutil.Client("AMF", registerAMFURL))
	if err != nil {
		return err
	}

	if printer.Format() == output.FormatTable {
		switch outcome.Status {
		case "REGISTRATION_COMPLETE", "REGISTRATION_ACCEPT":
			printer.Success(fmt.Sprintf("%s registered (%s, GUTI %s)", outcome.SUPI, outcome.Status, outcome.GUTI))
		default:
			printer.Error(fmt.Sprintf("Registration ended with %s: %s", outcome.Status, outcome.Detail))
		}
		return nil
	}
	return printer.Print(outcome)
}

// driveRegistration walks the NAS exchanges until the registration
// settles. Protocol-level rejections are outcomes, not errors.
func driveRegistration(ctx context.Context, amf *sbi.Client) (*registrationOutcome, error) {
	request := nas.RegistrationRequest{
		Header:           nas.NewHeader(nas.MessageTypeRegistrationRequest),
		RegistrationType: nas.RegistrationTypeInitial,
		SUCI:             registerSUCI,
		UESecurityCapability: map[string]any{
			"nea": []string{"NEA0", "NEA1", "NEA2"},
			"nia": []string{"NIA1", "NIA2"},
		},
	}

	var first struct {
		Status     string                    `json:"status"`
		GUTI       string                    `json:"guti"`
		NASMessage nas.AuthenticationRequest `json:"nas_message"`
		Links      map[string]models.Link    `json:"links"`
	}
	if err := amf.Post(ctx, "/nas/registration-request", request, &first); err != nil {
		return nil, fmt.Errorf("registration request failed: %s", cmdutil.APIErrorMessage(err))
	}

	supi := supiFromSUCI(registerSUCI)

	if first.Status != "AUTHENTICATION_REQUIRED" {
		return &registrationOutcome{
			Status: first.Status,
			SUPI:   supi,
			GUTI:   first.GUTI,
		}, nil
	}

	res := registerRes
	if res == "" {
		res = fallbackChallengeResponse(supi, first.NASMessage.RAND, first.NASMessage.AUTN)
	}

	var auth struct {
		Status string `json:"status"`
		Cause  int    `json:"cause"`
	}
	err := amf.Post(ctx, "/nas/authentication-response", map[string]any{
		"supi":          supi,
		"authResponse":  res,
		"authContextId": confirmationContextID(first.Links),
	}, &auth)
	if err != nil {
		return nil, fmt.Errorf("authentication response failed: %s", cmdutil.APIErrorMessage(err))
	}
	if auth.Status != "AUTHENTICATION_SUCCESS" {
		return &registrationOutcome{
			Status: auth.Status,
			SUPI:   supi,
			Detail: fmt.Sprintf("5G-AKA confirmation rejected (cause %d)", auth.Cause),
		}, nil
	}

	var complete struct {
		Status     string                 `json:"status"`
		NASMessage nas.RegistrationAccept `json:"nas_message"`
	}
	err = amf.Post(ctx, "/nas/security-mode-complete", map[string]any{
		"supi":   supi,
		"imeisv": registerIMEISV,
	}, &complete)
	if err != nil {
		return nil, fmt.Errorf("security mode complete failed: %s", cmdutil.APIErrorMessage(err))
	}

	return &registrationOutcome{
		Status: complete.Status,
		SUPI:   supi,
		GUTI:   complete.NASMessage.MobileIdentity,
	}, nil
}

// supiFromSUCI recovers the SUPI the network will assign: the emulation
// keeps the MSIN as the trailing dash-separated segment of the SUCI.
func supiFromSUCI(suci string) string {
	if !strings.HasPrefix(suci, "suci-") {
		return suci
	}
	parts := strings.Split(suci, "-")
	return "imsi-" + parts[len(parts)-1]
}

// fallbackChallengeResponse mirrors the AUSF's store-less expected
// response: SHA-256 over SUPI, RAND and AUTN, truncated to 16 hex chars.
func fallbackChallengeResponse(supi, rand, autn string) string {
	sum := sha256.Sum256([]byte(supi + rand + autn))
	return hex.EncodeToString(sum[:])[:16]
}

// confirmationContextID extracts the authentication context id from the
// challenge links.
func confirmationContextID(links map[string]models.Link) string {
	link, ok := links["5g-aka"]
	if !ok {
		return ""
	}
	parts := strings.Split(strings.TrimSuffix(link.Href, "/5g-aka-confirmation"), "/")
	return parts[len(parts)-1]
}
