package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	tests := []struct {
		in   ByteSize
		want string
	}{
		{in: 0, want: "0B"},
		{in: 512, want: "512B"},
		{in: KiB, want: "1.00KiB"},
		{in: 1536 * KiB, want: "1.50MiB"},
		{in: 3 * GiB, want: "3.00GiB"},
		{in: 2 * TiB, want: "2.00TiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.String())
	}
}
