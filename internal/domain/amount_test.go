package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEtherAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1", "1000000000000000000"},
		{"1.5", "1500000000000000000"},
		{"0.000000000000000001", "1"}, // 1 wei, a menor unidade
		{" 2.0 ", "2000000000000000000"},
		{"0.1", "100000000000000000"},
	}
	for _, tc := range tests {
		got, err := ParseEtherAmount(tc.input)
		require.NoError(t, err, "input: %q", tc.input)
		assert.Equal(t, tc.expected, got.String(), "input: %q", tc.input)
	}
}

func TestParseEtherAmount_Rejects(t *testing.T) {
	cases := []string{
		"",
		"abc",
		"0",
		"-1",
		"0.0000000000000000001", // abaixo de 1 wei
		"1,5",
	}
	for _, raw := range cases {
		_, err := ParseEtherAmount(raw)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input: %q", raw)
	}
}

func TestFormatWeiAsEther(t *testing.T) {
	wei, ok := new(big.Int).SetString("1500000000000000000", 10)
	require.True(t, ok)
	assert.Equal(t, "1.5", FormatWeiAsEther(wei))

	assert.Equal(t, "0", FormatWeiAsEther(nil))
	assert.Equal(t, "0.000000000000000001", FormatWeiAsEther(big.NewInt(1)))
}
