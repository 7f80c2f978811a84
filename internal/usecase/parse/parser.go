// Package parse extracts scored matches from the model's XML-shaped output.
// The format is a fixed, non-nested tag grammar; a full XML parser would
// reject the malformed output models routinely produce, so extraction is
// string-based and forgiving. Individually broken items are dropped, only
// unrecoverable input reports an error.
package parse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/crmfind/internal/domain"
	"github.com/kailas-cloud/crmfind/internal/domain/match"
)

const (
	// defaultScore replaces a present but non-numeric score.
	defaultScore = 50
	// defaultMaxItems bounds item extraction per section against
	// adversarially repetitive output.
	defaultMaxItems = 1000
)

// Parser extracts result sets from raw completion text.
type Parser struct {
	maxItems int
}

// New creates a parser with the default item bound.
func New() *Parser {
	return &Parser{maxItems: defaultMaxItems}
}

// WithMaxItems overrides the per-section item bound. Test hook.
func (p *Parser) WithMaxItems(n int) *Parser {
	if n > 0 {
		p.maxItems = n
	}
	return p
}

// Parse extracts the interpretation and per-kind match lists from text.
// Tags are case-sensitive; the first opening tag pairs with the first
// subsequent closing tag. Absent sections yield empty lists. The returned
// error always wraps domain.ErrParseFailure.
func (p *Parser) Parse(text string) (rs match.ResultSet, err error) {
	defer func() {
		if r := recover(); r != nil {
			rs = match.ResultSet{}
			err = fmt.Errorf("%w: %v", domain.ErrParseFailure, r)
		}
	}()

	interpretation := strings.TrimSpace(extractTag(text, "query_interpretation"))

	deals, err := p.parseSection(text, "deals")
	if err != nil {
		return match.ResultSet{}, err
	}
	contacts, err := p.parseSection(text, "contacts")
	if err != nil {
		return match.ResultSet{}, err
	}
	events, err := p.parseSection(text, "events")
	if err != nil {
		return match.ResultSet{}, err
	}

	return match.NewResultSet(interpretation, deals, contacts, events), nil
}

func (p *Parser) parseSection(text, tag string) ([]match.Match, error) {
	section := extractTag(text, tag)
	if section == "" {
		return nil, nil
	}

	items, err := p.extractAll(section, "item")
	if err != nil {
		return nil, err
	}

	matches := make([]match.Match, 0, len(items))
	for _, item := range items {
		if m, ok := parseItem(item); ok {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

// parseItem builds a match from one <item> body. All three of id, score and
// reason must be present or the item is dropped.
func parseItem(item string) (match.Match, bool) {
	id := strings.TrimSpace(extractTag(item, "id"))
	score := strings.TrimSpace(extractTag(item, "score"))
	reason := strings.TrimSpace(extractTag(item, "reason"))
	if id == "" || score == "" || reason == "" {
		return match.Match{}, false
	}
	return match.New(id, parseScore(score), reason), true
}

// parseScore converts the score text to an int clamped to [0, 100].
// Non-numeric text falls back to a neutral midpoint.
func parseScore(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return defaultScore
	}
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// extractTag returns the content between the first <tag> and the first
// subsequent </tag>, or "" when either is missing.
func extractTag(text, tag string) string {
	open := "<" + tag + ">"
	closing := "</" + tag + ">"

	start := strings.Index(text, open)
	if start < 0 {
		return ""
	}
	start += len(open)

	end := strings.Index(text[start:], closing)
	if end < 0 {
		return ""
	}
	return text[start : start+end]
}

// extractAll returns every <tag>...</tag> body in order, scanning forward so
// each opening tag pairs with the nearest close. Exceeding the item bound is
// unrecoverable.
func (p *Parser) extractAll(text, tag string) ([]string, error) {
	open := "<" + tag + ">"
	closing := "</" + tag + ">"

	var out []string
	rest := text
	for {
		start := strings.Index(rest, open)
		if start < 0 {
			return out, nil
		}
		start += len(open)

		end := strings.Index(rest[start:], closing)
		if end < 0 {
			return out, nil
		}

		if len(out) >= p.maxItems {
			return nil, fmt.Errorf("%w: more than %d <%s> elements",
				domain.ErrParseFailure, p.maxItems, tag)
		}
		out = append(out, rest[start:start+end])
		rest = rest[start+end+len(closing):]
	}
}
