package checkout

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalar_Decimal(t *testing.T) {
	tests := []struct {
		name  string
		in    Scalar
		want  string
		valid bool
	}{
		{"number", Number("19.99"), "19.99", true},
		{"text", Text("7"), "7", true},
		{"float noise", Number("0.30000000000000004"), "0.30000000000000004", true},
		{"largest integer part", Number("999999999999999.99"), "999999999999999.99", true},
		{"integer part too long", Number("1000000000000000"), "", false},
		{"positive exponent", Text("1e50000000"), "", false},
		{"negative exponent", Text("1e-50000000"), "", false},
		{"zero with exponent", Number("0e99"), "", false},
		{"absent", Scalar{}, "", false},
		{"not numeric", Text("ten"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := tt.in.Decimal()
			if !tt.valid {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(d), "got %s", d)
		})
	}
}

func TestScalar_Int(t *testing.T) {
	n, err := Number("12").Int()
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	for _, in := range []string{"1.5", "18446744073709551617", "9223372036854775808", "1e400"} {
		_, err := Number(in).Int()
		assert.Error(t, err, in)
	}
}

func TestScalar_HugeExponentIsCheap(t *testing.T) {
	var s Scalar
	require.NoError(t, json.Unmarshal([]byte(`"1e50000000"`), &s))

	start := time.Now()
	_, err := s.Decimal()
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
