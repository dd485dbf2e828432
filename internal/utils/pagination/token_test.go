package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeEntryCursor(t *testing.T) {
	cursor := domain.EntryCursor{
		EntryDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Sequence:  42,
	}

	token := EncodeEntryCursor(cursor)
	assert.NotEmpty(t, token, "Token should not be empty")

	decoded, err := DecodeEntryCursor(token)
	require.NoError(t, err)
	assert.Equal(t, cursor, decoded)
}

func TestEncodeEntryCursorDropsTimeOfDay(t *testing.T) {
	cursor := domain.EntryCursor{
		EntryDate: time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC),
		Sequence:  7,
	}

	decoded, err := DecodeEntryCursor(EncodeEntryCursor(cursor))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), decoded.EntryDate)
	assert.Equal(t, int64(7), decoded.Sequence)
}

func TestDecodeEntryCursorError(t *testing.T) {
	_, err := DecodeEntryCursor("this is not base64!")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "base64 decode")

	_, err = DecodeEntryCursor(base64.RawURLEncoding.EncodeToString([]byte("2026-01-15")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	_, err = DecodeEntryCursor(base64.RawURLEncoding.EncodeToString([]byte("notadate|3")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "entry date parse")

	_, err = DecodeEntryCursor(base64.RawURLEncoding.EncodeToString([]byte("2026-01-15|x")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sequence parse")
}

func TestCursorOf(t *testing.T) {
	e := domain.JournalEntry{EntryDate: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), Sequence: 9}
	c := CursorOf(e)
	assert.False(t, c.After(e))

	later := e
	later.Sequence = 10
	assert.True(t, c.After(later))
}
