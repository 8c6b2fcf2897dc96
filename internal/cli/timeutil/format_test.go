package timeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "45s", want: "45s"},
		{in: "90s", want: "1m 30s"},
		{in: "72h30m15s", want: "3d 0h 30m 15s"},
		{in: "2h5m", want: "2h 5m 0s"},
		{in: "not-a-duration", want: "not-a-duration"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUptime(tt.in), tt.in)
	}
}
