package feed

import (
	"strconv"
	"strings"

	"github.com/murmurapp/murmur/internal/models"
)

// Page is one page of a listing plus its pagination metadata. NextCursor is
// the sort key of the last returned item, minted only when more items exist.
type Page struct {
	Items      []*models.Post `json:"items"`
	HasMore    bool           `json:"has_more"`
	NextCursor string         `json:"next_cursor"`
}

// emptyPage is what a stale or malformed cursor degrades to: no results
// after this point, never an error.
func emptyPage() Page {
	return Page{Items: []*models.Post{}}
}

// parseIDCursor decodes a chronological cursor (a post ID). ok is false for
// malformed or non-positive values.
func parseIDCursor(cursor string) (int64, bool) {
	id, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseCompositeCursor decodes a ranked cursor: a descending float sort key
// (engagement score or relevance rank) plus the post ID tiebreak, joined by
// ':'. Without the tiebreak, items tied on the sort key at a page boundary
// would be skipped.
func parseCompositeCursor(cursor string) (key float64, id int64, ok bool) {
	parts := strings.SplitN(cursor, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	key, err := strconv.ParseFloat(parts[0], 64)
	if err != nil || key < 0 {
		return 0, 0, false
	}
	id, idOK := parseIDCursor(parts[1])
	if !idOK {
		return 0, 0, false
	}
	return key, id, true
}

func idKey(p *models.Post) string {
	return strconv.FormatInt(p.ID, 10)
}

func scoreKey(p *models.Post) string {
	return strconv.FormatFloat(p.Score, 'f', -1, 64) + ":" + strconv.FormatInt(p.ID, 10)
}

// paginate derives page metadata from a page-plus-one fetch: the overflow
// item proves more results exist and is dropped before returning. The cursor
// is minted from the last trimmed item, before any in-memory filtering, so
// the next page always advances even when the filter empties this one.
func paginate(items []*models.Post, limit int, key func(*models.Post) string) Page {
	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}
	next := ""
	if hasMore && len(items) > 0 {
		next = key(items[len(items)-1])
	}
	return Page{Items: items, HasMore: hasMore, NextCursor: next}
}
