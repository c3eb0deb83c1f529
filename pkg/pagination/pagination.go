package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Page sizes for keyset listings.
const (
	DefaultLimit = 25
	MaxLimit     = 100
)

const cursorSep = "|"

type Params struct {
	Limit  int
	Cursor string
}

// Cursor marks the last row of a page for listings ordered by name.
type Cursor struct {
	Name string
	ID   uuid.UUID
}

// NormalizeLimit maps non-positive limits to DefaultLimit and caps at MaxLimit.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

// LimitWithBuffer is the row count to query: one extra row reveals whether a
// next page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// Trim drops the lookahead row fetched with LimitWithBuffer and reports
// whether another page exists.
func Trim[T any](rows []T, limit int) ([]T, bool) {
	limit = NormalizeLimit(limit)
	if len(rows) > limit {
		return rows[:limit], true
	}
	return rows, false
}

// EncodeCursor renders cursor as an opaque URL-safe token.
func EncodeCursor(cursor Cursor) string {
	return base64.RawURLEncoding.EncodeToString([]byte(cursor.ID.String() + cursorSep + cursor.Name))
}

// ParseCursor decodes the cursor string back into its components. An empty
// value means the first page.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	rawID, name, ok := strings.Cut(string(decoded), cursorSep)
	if !ok || name == "" {
		return nil, errors.New("invalid cursor format")
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	return &Cursor{Name: name, ID: id}, nil
}
