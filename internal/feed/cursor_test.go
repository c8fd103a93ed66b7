package feed

import (
	"strconv"
	"testing"

	"github.com/murmurapp/murmur/internal/models"
)

func TestParseIDCursor(t *testing.T) {
	tests := []struct {
		name     string
		cursor   string
		expected int64
		ok       bool
	}{
		{"valid id", "42", 42, true},
		{"zero rejected", "0", 0, false},
		{"negative rejected", "-5", 0, false},
		{"garbage rejected", "abc", 0, false},
		{"empty rejected", "", 0, false},
		{"float rejected", "1.5", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := parseIDCursor(tt.cursor)
			if ok != tt.ok || id != tt.expected {
				t.Errorf("parseIDCursor(%q) = (%d, %v), want (%d, %v)", tt.cursor, id, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestParseCompositeCursor(t *testing.T) {
	key, id, ok := parseCompositeCursor("0.125:37")
	if !ok || key != 0.125 || id != 37 {
		t.Errorf("parseCompositeCursor() = (%v, %v, %v), want (0.125, 37, true)", key, id, ok)
	}

	key, id, ok = parseCompositeCursor("0:4")
	if !ok || key != 0 || id != 4 {
		t.Errorf("parseCompositeCursor() = (%v, %v, %v), want (0, 4, true)", key, id, ok)
	}

	for _, bad := range []string{"", "0.5", "0.5:", ":37", "x:37", "0.5:x", "-1:37"} {
		if _, _, ok := parseCompositeCursor(bad); ok {
			t.Errorf("parseCompositeCursor(%q) should be rejected", bad)
		}
	}
}

func TestScoreKeyCarriesTiebreak(t *testing.T) {
	key := scoreKey(&models.Post{ID: 37, Score: 8.5})
	if key != "8.5:37" {
		t.Errorf("scoreKey = %q, want %q", key, "8.5:37")
	}

	score, id, ok := parseCompositeCursor(key)
	if !ok || score != 8.5 || id != 37 {
		t.Errorf("scoreKey round-trip = (%v, %v, %v)", score, id, ok)
	}
}

func makePosts(n int) []*models.Post {
	posts := make([]*models.Post, n)
	for i := 0; i < n; i++ {
		// Descending IDs, the order a chronological listing returns
		posts[i] = &models.Post{ID: int64(n - i)}
	}
	return posts
}

func TestPaginate(t *testing.T) {
	t.Run("overflow trimmed and cursor minted", func(t *testing.T) {
		// limit=15 requested, store returned 16
		page := paginate(makePosts(16), 15, idKey)
		if len(page.Items) != 15 {
			t.Fatalf("expected 15 items, got %d", len(page.Items))
		}
		if !page.HasMore {
			t.Error("expected HasMore=true")
		}
		want := strconv.FormatInt(page.Items[14].ID, 10)
		if page.NextCursor != want {
			t.Errorf("NextCursor = %q, want id of 15th returned item %q", page.NextCursor, want)
		}
	})

	t.Run("exact page means no more", func(t *testing.T) {
		page := paginate(makePosts(10), 10, idKey)
		if page.HasMore {
			t.Error("expected HasMore=false")
		}
		if page.NextCursor != "" {
			t.Errorf("expected empty NextCursor, got %q", page.NextCursor)
		}
	})

	t.Run("short page means no more", func(t *testing.T) {
		page := paginate(makePosts(3), 10, idKey)
		if len(page.Items) != 3 || page.HasMore || page.NextCursor != "" {
			t.Errorf("unexpected page: %+v", page)
		}
	})

	t.Run("empty fetch", func(t *testing.T) {
		page := paginate(nil, 10, idKey)
		if len(page.Items) != 0 || page.HasMore || page.NextCursor != "" {
			t.Errorf("unexpected page: %+v", page)
		}
	})
}

// Pagination over a static set never repeats an item: the cursor from page N
// strictly bounds every ID on page N+1.
func TestPaginateNoOverlap(t *testing.T) {
	all := makePosts(25)
	limit := 10

	first := paginate(append([]*models.Post{}, all[:limit+1]...), limit, idKey)
	if !first.HasMore {
		t.Fatal("expected more pages")
	}
	boundary, ok := parseIDCursor(first.NextCursor)
	if !ok {
		t.Fatalf("cursor %q should parse", first.NextCursor)
	}

	// Simulate the store applying the strict less-than comparison
	var rest []*models.Post
	for _, p := range all {
		if p.ID < boundary {
			rest = append(rest, p)
		}
	}
	second := paginate(rest[:limit+1], limit, idKey)

	seen := make(map[int64]bool)
	for _, p := range first.Items {
		seen[p.ID] = true
	}
	for _, p := range second.Items {
		if seen[p.ID] {
			t.Errorf("post %d returned on both pages", p.ID)
		}
	}
}

// A ranked walk over posts tied on score must not skip the tie group at the
// page boundary: the ID tiebreak in the cursor resumes inside the group.
func TestScoreCursorTiedGroupNotSkipped(t *testing.T) {
	// Five posts, all score 0, in score DESC, id DESC order
	var all []*models.Post
	for id := int64(5); id >= 1; id-- {
		all = append(all, &models.Post{ID: id, Score: 0})
	}
	limit := 2

	first := paginate(append([]*models.Post{}, all[:limit+1]...), limit, scoreKey)
	if !first.HasMore {
		t.Fatal("expected more pages")
	}
	score, boundaryID, ok := parseCompositeCursor(first.NextCursor)
	if !ok {
		t.Fatalf("cursor %q should parse", first.NextCursor)
	}

	// Simulate the store applying the composite comparison
	var rest []*models.Post
	for _, p := range all {
		if p.Score < score || (p.Score == score && p.ID < boundaryID) {
			rest = append(rest, p)
		}
	}
	if len(rest) != 3 {
		t.Fatalf("expected the 3 remaining tied posts, got %d", len(rest))
	}

	second := paginate(rest, limit, scoreKey)
	got := make(map[int64]bool)
	for _, p := range append(first.Items, second.Items...) {
		if got[p.ID] {
			t.Errorf("post %d returned twice", p.ID)
		}
		got[p.ID] = true
	}
	if len(got) != 4 {
		t.Errorf("expected 4 distinct posts across two pages, got %d", len(got))
	}
}
