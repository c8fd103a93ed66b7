package feed

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/murmurapp/murmur/internal/models"
	"github.com/murmurapp/murmur/pkg/config"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.sqlite")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := gdb.AutoMigrate(&models.Post{}, &models.PostHashtag{}, &models.ReactionCount{}); err != nil {
		t.Fatal(err)
	}
	return gdb
}

func seedPost(t *testing.T, gdb *gorm.DB, id, authorID int64, score float64) {
	t.Helper()

	now := time.Now().UTC()
	post := &models.Post{
		ID:         id,
		AuthorID:   authorID,
		AuthorName: "someone",
		Body:       "hello world",
		Visibility: models.VisibilityPublic,
		CreatedAt:  now,
		UpdatedAt:  now,
		Score:      score,
	}
	if err := gdb.Create(post).Error; err != nil {
		t.Fatal(err)
	}
}

// Posts tied on score must all surface across a trending walk; the ID
// tiebreak in the cursor resumes inside the tie group instead of skipping it.
func TestTrendingPaginatesThroughTiedScores(t *testing.T) {
	gdb := testDB(t)
	for id := int64(1); id <= 5; id++ {
		seedPost(t, gdb, id, id, 0)
	}

	s := NewService(gdb, nil, &config.ListingConfig{DefaultPageSize: 20, MaxPageSize: 50})
	ctx := context.Background()

	seen := make(map[int64]bool)
	cursor := ""
	for pages := 0; ; pages++ {
		if pages > 5 {
			t.Fatal("trending walk did not terminate")
		}
		page, err := s.Trending(ctx, nil, WindowDay, ListParams{Cursor: cursor, Limit: 2})
		if err != nil {
			t.Fatalf("Trending failed: %v", err)
		}
		for _, p := range page.Items {
			if seen[p.ID] {
				t.Errorf("post %d returned twice", p.ID)
			}
			seen[p.ID] = true
		}
		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}

	if len(seen) != 5 {
		t.Errorf("expected all 5 tied posts across pages, got %d", len(seen))
	}
}

func TestTrendingDistinctScoresOrdered(t *testing.T) {
	gdb := testDB(t)
	seedPost(t, gdb, 1, 1, 3.5)
	seedPost(t, gdb, 2, 2, 9.25)
	seedPost(t, gdb, 3, 3, 0.5)

	s := NewService(gdb, nil, &config.ListingConfig{DefaultPageSize: 20, MaxPageSize: 50})

	page, err := s.Trending(context.Background(), nil, WindowDay, ListParams{Limit: 10})
	if err != nil {
		t.Fatalf("Trending failed: %v", err)
	}
	if len(page.Items) != 3 || page.HasMore {
		t.Fatalf("unexpected page: %d items, HasMore=%v", len(page.Items), page.HasMore)
	}
	for i, want := range []int64{2, 1, 3} {
		if page.Items[i].ID != want {
			t.Errorf("position %d = post %d, want %d", i, page.Items[i].ID, want)
		}
	}
}

func TestTrendingMalformedCursorDegrades(t *testing.T) {
	gdb := testDB(t)
	seedPost(t, gdb, 1, 1, 1)

	s := NewService(gdb, nil, &config.ListingConfig{DefaultPageSize: 20, MaxPageSize: 50})

	page, err := s.Trending(context.Background(), nil, WindowDay, ListParams{Cursor: "not-a-cursor", Limit: 10})
	if err != nil {
		t.Fatalf("malformed cursor must not error: %v", err)
	}
	if len(page.Items) != 0 || page.HasMore || page.NextCursor != "" {
		t.Errorf("expected empty page, got %+v", page)
	}
}
