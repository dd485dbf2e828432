package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

const dateFormat = "2006-01-02"

// EncodeEntryCursor creates an opaque page token from the last entry's date and sequence.
func EncodeEntryCursor(cursor domain.EntryCursor) string {
	tokenStr := fmt.Sprintf("%s|%d", cursor.EntryDate.UTC().Format(dateFormat), cursor.Sequence)
	return base64.RawURLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeEntryCursor parses a token produced by EncodeEntryCursor.
func DecodeEntryCursor(token string) (domain.EntryCursor, error) {
	decodedBytes, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return domain.EntryCursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 {
		return domain.EntryCursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	entryDate, err := time.Parse(dateFormat, parts[0])
	if err != nil {
		return domain.EntryCursor{}, fmt.Errorf("invalid pagination token format (entry date parse): %w", err)
	}
	seq, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return domain.EntryCursor{}, fmt.Errorf("invalid pagination token format (sequence parse): %w", err)
	}
	return domain.EntryCursor{EntryDate: entryDate, Sequence: seq}, nil
}

// CursorOf returns the cursor positioned at e.
func CursorOf(e domain.JournalEntry) domain.EntryCursor {
	return domain.EntryCursor{EntryDate: e.EntryDate, Sequence: e.Sequence}
}
