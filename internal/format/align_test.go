package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlign8(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 0},
		{1, 8},
		{7, 8},
		{8, 8},
		{9, 16},
		{4095, 4096},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Align8(tt.in), "Align8(%d)", tt.in)
		assert.Equal(t, uint32(tt.want), Align8U32(uint32(tt.in)), "Align8U32(%d)", tt.in)
		assert.True(t, IsAligned(Align8(tt.in)))
	}
}

func TestAdjustedSize(t *testing.T) {
	tests := []struct {
		request, want int
	}{
		{1, 16},
		{8, 16},
		{9, 24},
		{16, 24},
		{17, 32},
		{50, 64},
		{100, 112},
		{200, 208},
		{4080, 4088},
	}
	for _, tt := range tests {
		got := AdjustedSize(tt.request)
		assert.Equal(t, tt.want, got, "AdjustedSize(%d)", tt.request)
		assert.GreaterOrEqual(t, got-DoubleSize, tt.request, "payload must cover request")
		assert.True(t, IsAligned(got))
	}
}
