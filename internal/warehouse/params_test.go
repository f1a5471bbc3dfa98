package warehouse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInterpolatePositional(t *testing.T) {
	got := Interpolate("SELECT * FROM t WHERE a = $1 AND b = $2", "x", 7)
	assert.Equal(t, "SELECT * FROM t WHERE a = 'x' AND b = 7", got)
}

func TestInterpolateTenPlusPlaceholders(t *testing.T) {
	// $10 must not be rewritten as "$1 followed by 0".
	args := make([]any, 10)
	for i := range args {
		args[i] = i + 1
	}
	got := Interpolate("VALUES ($1, $10)", args...)
	assert.Equal(t, "VALUES (1, 10)", got)
}

func TestInterpolateRepeatedPlaceholder(t *testing.T) {
	got := Interpolate("WHERE start >= $1 OR prev < $1", "2024-01-01")
	assert.Equal(t, "WHERE start >= '2024-01-01' OR prev < '2024-01-01'", got)
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "NULL"},
		{"string", "plain", "'plain'"},
		{"quote doubling", "O'Reilly", "'O''Reilly'"},
		{"true", true, "TRUE"},
		{"false", false, "FALSE"},
		{"int", 42, "42"},
		{"int64", int64(-3), "-3"},
		{"float", 19.99, "19.99"},
		{"time", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), "'2024-03-15 10:30:00'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Literal(tt.in))
		})
	}
}

func TestDateLiteral(t *testing.T) {
	d := time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "'2024-03-15'", DateLiteral(d))
}
