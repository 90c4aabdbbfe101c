package sequence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailerp/backend/internal/domain/shared/valueobject"
)

func TestLocationPrefix(t *testing.T) {
	t.Run("store prefix is zero padded", func(t *testing.T) {
		loc := valueobject.StoreLocation(uuid.New())
		assert.Equal(t, "STR007", LocationPrefix(loc, 7))
		assert.Equal(t, "STR042", LocationPrefix(loc, 42))
		assert.Equal(t, "STR999", LocationPrefix(loc, 999))
	})

	t.Run("central DC has fixed prefix", func(t *testing.T) {
		assert.Equal(t, "DC", LocationPrefix(valueobject.CentralDCLocation(), 0))
	})
}

func TestFormatDocumentNumber(t *testing.T) {
	date := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, "STR007-20260831-0001", FormatDocumentNumber("STR007", date, 1))
	assert.Equal(t, "DC-20260831-0042", FormatDocumentNumber("DC", date, 42))

	// Sequence numbers past 9999 widen rather than wrap
	assert.Equal(t, "STR007-20260831-10000", FormatDocumentNumber("STR007", date, 10000))
}

func TestParseDocumentNumber(t *testing.T) {
	t.Run("valid store number", func(t *testing.T) {
		parsed, err := ParseDocumentNumber("STR007-20260831-0042")
		require.NoError(t, err)
		assert.Equal(t, "STR007", parsed.Prefix)
		assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), parsed.Date)
		assert.Equal(t, int64(42), parsed.Sequence)
	})

	t.Run("valid DC number", func(t *testing.T) {
		parsed, err := ParseDocumentNumber("DC-20260831-0001")
		require.NoError(t, err)
		assert.Equal(t, "DC", parsed.Prefix)
		assert.Equal(t, int64(1), parsed.Sequence)
	})

	t.Run("wide sequence accepted", func(t *testing.T) {
		parsed, err := ParseDocumentNumber("STR001-20260831-12345")
		require.NoError(t, err)
		assert.Equal(t, int64(12345), parsed.Sequence)
	})

	t.Run("malformed numbers rejected", func(t *testing.T) {
		invalid := []string{
			"",
			"STR7-20260831-0001",       // prefix not padded
			"STR0070-20260831-0001",    // prefix too wide
			"STR007-2026831-0001",      // short date
			"STR007-20260831-001",      // short sequence
			"STR007-20260831-0000",     // zero sequence
			"STR007-20261345-0001",     // impossible date
			"XYZ007-20260831-0001",     // unknown prefix
			"STR007-20260831-0001-dup", // trailing garbage
		}
		for _, number := range invalid {
			_, err := ParseDocumentNumber(number)
			assert.Error(t, err, "expected %q to be rejected", number)
		}
	})
}

func TestCounterID(t *testing.T) {
	date := time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "STR007-20260831", CounterID("STR007", date))
	assert.Equal(t, "DC-20260831", CounterID("DC", date))
}

func TestNewCounter(t *testing.T) {
	counter, err := NewCounter("STR007-20260831")
	require.NoError(t, err)
	assert.Equal(t, int64(0), counter.CurrentValue)

	_, err = NewCounter("")
	assert.Error(t, err)
}
