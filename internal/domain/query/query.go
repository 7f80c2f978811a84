package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/crmfind/internal/domain"
)

// Query length limits in bytes.
const (
	MinBytes = 3
	MaxBytes = 500
)

// Query is a validated search query owned by a single search invocation.
type Query struct {
	userID string
	text   string
}

// New validates the raw query text. The text is kept verbatim; normalization
// is a cache-key concern and happens in the cache, not here.
func New(userID, text string) (Query, error) {
	if len(text) < MinBytes {
		return Query{}, fmt.Errorf("%w: got %d bytes, need at least %d",
			domain.ErrQueryTooShort, len(text), MinBytes)
	}
	if len(text) > MaxBytes {
		return Query{}, fmt.Errorf("%w: got %d bytes, max %d",
			domain.ErrQueryTooLong, len(text), MaxBytes)
	}
	return Query{userID: userID, text: text}, nil
}

// UserID returns the owning user identifier.
func (q *Query) UserID() string { return q.userID }

// Text returns the raw query text.
func (q *Query) Text() string { return q.text }

// Normalized returns the lower-cased, trimmed form used as cache key component.
func (q *Query) Normalized() string { return strings.ToLower(strings.TrimSpace(q.text)) }
