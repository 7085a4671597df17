package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeeCents(t *testing.T) {
	tests := []struct {
		fee  string
		want int64
	}{
		{"$1,500.00", 150000},
		{"1500", 150000},
		{"1500.5", 150050},
		{"KES 2,500", 250000},
		{"€ 99.99", 9999},
		{" 0.75 ", 75},
		{".5", 50},
		{"USD 1 000 000", 100000000},
		{"2500 KES", 250000},
		{"92233720368547758.07", 9223372036854775807},
	}
	for _, tt := range tests {
		t.Run(tt.fee, func(t *testing.T) {
			got, err := ParseFeeCents(tt.fee)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFeeCents_Invalid(t *testing.T) {
	for _, fee := range []string{"", "$", "free", "$0.00", "1.2.3", "10.001", "-5", "12#",
		"1e3", "12abc34", "USD 1O0",
		"200000000000000000", "92233720368547758.08", "99999999999999999999"} {
		t.Run(fee, func(t *testing.T) {
			_, err := ParseFeeCents(fee)
			assert.Error(t, err)
		})
	}
}
