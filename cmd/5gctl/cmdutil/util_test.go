package cmdutil

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/cli/output"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
)

func TestPrinterHonorsOutputFlag(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		want    output.Format
		wantErr bool
	}{
		{name: "table", flag: "table", want: output.FormatTable},
		{name: "json", flag: "json", want: output.FormatJSON},
		{name: "yaml", flag: "yaml", want: output.FormatYAML},
		{name: "invalid", flag: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Flags.Output = tt.flag
			p, err := Printer()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Format())
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	apiErr := &sbi.APIError{
		StatusCode: 404,
		Detail:     "UE context not found",
		Cause:      "CONTEXT_NOT_FOUND",
	}
	assert.Equal(t, "HTTP 404: UE context not found: cause CONTEXT_NOT_FOUND", APIErrorMessage(apiErr))

	assert.Equal(t, "HTTP 503", APIErrorMessage(&sbi.APIError{StatusCode: 503}))

	transport := errors.New("dial tcp 127.0.0.1:9001: connection refused")
	assert.Equal(t, transport.Error(), APIErrorMessage(transport))
}

func TestClientUsesFlagTimeout(t *testing.T) {
	Flags.NRFURL = "http://127.0.0.1:8000"
	Flags.Timeout = 2 * time.Second

	assert.Equal(t, "http://127.0.0.1:8000", NRFClient().BaseURL())
	assert.Equal(t, "http://10.0.0.7:9001", Client("AMF", "http://10.0.0.7:9001").BaseURL())
}
