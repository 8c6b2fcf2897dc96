package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/drcoopertbbt/BF3-5G-Demo/cmd/5gctl/cmdutil"
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/cli/credentials"
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/cli/output"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
)

var (
	tokenRequester string
	tokenNoCache   bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an OAuth2 access token from the NRF",
	Long: `Request a client-credentials access token from the NRF token
endpoint (TS 29.510 §5.4.2). The raw bearer token is printed so it can
be passed to curl or scripts.

Tokens are cached under the user config directory and reused until
close to expiry; pass --no-cache to force a fresh grant.

Examples:
  # Print a token
  5gctl token

  # Use it against a gated NRF surface
  curl -H "Authorization: Bearer $(5gctl token)" \
    http://127.0.0.1:8000/nnrf-nfm/v1/nf-instances`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenRequester, "requester", "AMF", "Requester NF type for the grant")
	tokenCmd.Flags().BoolVar(&tokenNoCache, "no-cache", false, "Skip the on-disk token cache")
}

func runToken(cmd *cobra.Command, args []string) error {
	printer, err := cmdutil.Printer()
	if err != nil {
		return err
	}

	requester := strings.ToUpper(tokenRequester)

	// Cache failures never block minting.
	var store *credentials.Store
	if !tokenNoCache {
		if store, err = credentials.NewStore(); err != nil {
			printer.Warning(fmt.Sprintf("Token cache unavailable: %v", err))
			store = nil
		}
	}

	if store != nil {
		if cached := store.Lookup(cmdutil.Flags.NRFURL, requester); cached != nil {
			return printToken(printer, cached.AccessToken)
		}
	}

	token, expiresIn, err := mintToken(cmd.Context(), requester)
	if err != nil {
		return err
	}

	if store != nil {
		expiresAt := time.Now().Add(time.Duration(expiresIn) * time.Second)
		if err := store.Put(cmdutil.Flags.NRFURL, requester, token, expiresAt); err != nil {
			printer.Warning(fmt.Sprintf("Token cache write failed: %v", err))
		}
	}
	return printToken(printer, token)
}

func mintToken(ctx context.Context, requester string) (string, int, error) {
	client := cmdutil.Client(requester, cmdutil.Flags.NRFURL)

	req := models.AccessTokenRequest{
		GrantType: models.GrantTypeClientCredentials,
		Scope:     models.ScopeNRFDefault,
	}
	var resp models.AccessTokenResponse
	if err := client.Post(ctx, "/oauth2/token", req, &resp); err != nil {
		return "", 0, fmt.Errorf("token request failed: %s", cmdutil.APIErrorMessage(err))
	}
	return resp.AccessToken, resp.ExpiresIn, nil
}

func printToken(printer *output.Printer, token string) error {
	if printer.Format() == output.FormatTable {
		printer.Println(token)
		return nil
	}
	return printer.Print(map[string]string{"access_token": token, "token_type": "Bearer"})
}
