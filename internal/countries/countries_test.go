package countries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"us", "US", false},
		{" gb ", "GB", false},
		{"XK", "XK", false},
		{"", "", true},
		{"USA", "", true},
		{"u1", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeCode(tt.input)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidCode, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, got)
	}
}

func TestTopoJSONCode(t *testing.T) {
	assert.Equal(t, "840", TopoJSONCode("US"))
	assert.Equal(t, "276", TopoJSONCode("de"))
	assert.Equal(t, "", TopoJSONCode(""))
	assert.Equal(t, "", TopoJSONCode("Q1"))
}

func TestNameFallsBackToCode(t *testing.T) {
	assert.NotEmpty(t, Name("FR"))
	assert.NotEqual(t, "FR", Name("FR"))
	assert.Equal(t, "Q1", Name("Q1"))
}
