package service

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWholeAmount(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"0", "0", true},
		{"-40", "-40", true},
		{"7.000", "7", true},
		{"3e2", "300", true},
		{strings.Repeat("9", 38), strings.Repeat("9", 38), true},
		{"0.5", "", false},
		{strings.Repeat("9", 39), "", false},
		{"1e38", "", false},
		{"1e99999999", "", false},
		{"1e-99999999", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := wholeAmount(decimal.RequireFromString(tt.input))
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}

func TestParseScoreValue_HugeExponentIsRejectedQuickly(t *testing.T) {
	done := make(chan error, 1)
	go func() {
		_, err := parseScoreValue("1e99999999")
		done <- err
	}()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("parsing an exponent-notation score expanded the value")
	}
}

func TestParseThreshold(t *testing.T) {
	got, err := ParseThreshold(" 1500 ")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(1500)))

	for _, bad := range []string{"-1", "12.5", "abc", "1e99999999"} {
		_, err := ParseThreshold(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}
