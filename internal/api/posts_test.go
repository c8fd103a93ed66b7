package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/murmurapp/murmur/internal/db"
	"github.com/murmurapp/murmur/internal/events"
	"github.com/murmurapp/murmur/internal/feed"
	"github.com/murmurapp/murmur/internal/middleware"
	"github.com/murmurapp/murmur/internal/models"
	"github.com/murmurapp/murmur/internal/notify"
	"github.com/murmurapp/murmur/pkg/config"
)

func testPostAPI(t *testing.T) (*PostAPI, *db.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.sqlite")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := (&db.DB{DB: gdb}).Migrate(); err != nil {
		t.Fatal(err)
	}

	repo := db.NewRepository(gdb)
	listing := feed.NewService(gdb, nil, &config.ListingConfig{DefaultPageSize: 20, MaxPageSize: 50})
	notifier := notify.New(repo, events.NoopSink{})
	return NewPostAPI(repo, listing, notifier), repo
}

func seedAuthorAndPost(t *testing.T, repo *db.Repository) (*models.User, *models.Post) {
	t.Helper()
	ctx := context.Background()

	users := db.NewUserRepository(repo)
	user := &models.User{Handle: "handle-1", DisplayName: "someone", CreatedAt: time.Now().UTC()}
	if err := users.Create(ctx, user); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	post := &models.Post{
		AuthorID:     user.ID,
		AuthorName:   user.DisplayName,
		Body:         "original #old",
		Visibility:   models.VisibilityPublic,
		CreatedAt:    now,
		UpdatedAt:    now,
		CommentCount: 5,
	}
	if err := db.NewPostRepository(repo).Create(ctx, post); err != nil {
		t.Fatal(err)
	}
	return user, post
}

func authoredContext(t *testing.T, user *models.User, postID int64, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/", bytes.NewReader([]byte(body)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatInt(postID, 10)}}
	c.Set(middleware.ViewerKey, feed.NewViewer(user.ID, false, nil, nil, nil, false, false))
	return c, rec
}

// Editing a body re-derives hashtags and refreshes the engagement score from
// current counters.
func TestUpdateRefreshesScoreAndHashtags(t *testing.T) {
	api, repo := testPostAPI(t)
	user, post := seedAuthorAndPost(t, repo)

	if post.Score != 0 {
		t.Fatalf("precondition: expected zero stored score, got %v", post.Score)
	}

	c, rec := authoredContext(t, user, post.ID, `{"body":"updated #news"}`)
	api.Update(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	ctx := context.Background()
	reloaded, err := db.NewPostRepository(repo).GetByID(ctx, post.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Body != "updated #news" {
		t.Errorf("body = %q", reloaded.Body)
	}
	// 5 comments at weight 2, barely decayed
	if reloaded.Score <= 9 {
		t.Errorf("score not refreshed on edit: %v", reloaded.Score)
	}

	var tags []string
	if err := repo.DB().Model(&models.PostHashtag{}).
		Where("post_id = ?", post.ID).
		Pluck("hashtag", &tags).Error; err != nil {
		t.Fatal(err)
	}
	if len(tags) != 1 || tags[0] != "news" {
		t.Errorf("hashtags = %v, want [news]", tags)
	}
}

func TestUpdateRejectsNonAuthor(t *testing.T) {
	api, repo := testPostAPI(t)
	_, post := seedAuthorAndPost(t, repo)

	users := db.NewUserRepository(repo)
	other := &models.User{Handle: "handle-2", DisplayName: "other", CreatedAt: time.Now().UTC()}
	if err := users.Create(context.Background(), other); err != nil {
		t.Fatal(err)
	}

	c, rec := authoredContext(t, other, post.ID, `{"body":"hijacked"}`)
	api.Update(c)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
