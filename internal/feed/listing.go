package feed

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/murmurapp/murmur/internal/cache"
	"github.com/murmurapp/murmur/internal/db"
	"github.com/murmurapp/murmur/internal/models"
	"github.com/murmurapp/murmur/pkg/config"
	"github.com/murmurapp/murmur/pkg/logging"
)

// Validation errors surfaced to handlers as client errors
var (
	ErrEmptySearchTerm = errors.New("search term is required")
	ErrInvalidWindow   = errors.New("invalid trending window")
	ErrInvalidSort     = errors.New("invalid sort type")
)

// Trending window constants
const (
	WindowDay  = "24h"
	WindowWeek = "7d"
)

// Search sort constants
const (
	SortRelevance = "relevance"
	SortRecent    = "recent"
)

// ListParams carries the pagination parameters common to every listing
type ListParams struct {
	Cursor string
	Limit  int
}

// Service composes query construction, the visibility filter and cursor
// pagination so every listing surface behaves identically
type Service struct {
	gdb          *gorm.DB
	posts        *db.PostRepository
	cache        *cache.Cache
	logger       *zap.Logger
	defaultLimit int
	maxLimit     int
}

// NewService creates a new listing service
func NewService(database *gorm.DB, redisCache *cache.Cache, cfg *config.ListingConfig) *Service {
	return &Service{
		gdb:          database,
		posts:        db.NewPostRepository(db.NewRepository(database)),
		cache:        redisCache,
		logger:       logging.WithComponent("feed"),
		defaultLimit: cfg.DefaultPageSize,
		maxLimit:     cfg.MaxPageSize,
	}
}

// clampLimit applies the default and the server-side ceiling
func (s *Service) clampLimit(n int) int {
	if n <= 0 {
		return s.defaultLimit
	}
	if n > s.maxLimit {
		return s.maxLimit
	}
	return n
}

// baseListing builds the query every listing starts from: public items only,
// with the viewer's own block list pushed down as a negative-author set.
// Reverse blocks cannot be expressed here; FilterForViewer catches those.
func (s *Service) baseListing(ctx context.Context, viewer *Viewer) *gorm.DB {
	q := s.gdb.WithContext(ctx).Model(&models.Post{}).
		Where("murmur_posts.visibility = ?", models.VisibilityPublic)
	if blocked := viewer.BlockedList(); len(blocked) > 0 {
		q = q.Where("murmur_posts.author_id NOT IN ?", blocked)
	}
	return q
}

// finishPage computes pagination metadata from a page-plus-one fetch, loads
// reaction totals and applies the in-memory visibility pass. The cursor is
// taken before filtering so pagination always advances.
func (s *Service) finishPage(ctx context.Context, viewer *Viewer, posts []*models.Post, limit int, key func(*models.Post) string) (Page, error) {
	page := paginate(posts, limit, key)
	if err := s.posts.LoadReactionTotals(ctx, page.Items); err != nil {
		return Page{}, err
	}
	page.Items = FilterForViewer(page.Items, viewer)
	return page, nil
}

// chronoPage runs a chronological listing: descending post ID order with an
// ID cursor. A malformed cursor degrades to an empty page.
func (s *Service) chronoPage(ctx context.Context, viewer *Viewer, q *gorm.DB, params ListParams) (Page, error) {
	limit := s.clampLimit(params.Limit)
	if params.Cursor != "" {
		id, ok := parseIDCursor(params.Cursor)
		if !ok {
			return emptyPage(), nil
		}
		q = q.Where("murmur_posts.id < ?", id)
	}

	var posts []*models.Post
	if err := q.Order("murmur_posts.id DESC").Limit(limit + 1).Find(&posts).Error; err != nil {
		return Page{}, fmt.Errorf("listing query failed: %w", err)
	}
	return s.finishPage(ctx, viewer, posts, limit, idKey)
}

// Feed lists public top-level posts, newest first
func (s *Service) Feed(ctx context.Context, viewer *Viewer, params ListParams) (Page, error) {
	q := s.baseListing(ctx, viewer).Where("murmur_posts.parent_id IS NULL")
	return s.chronoPage(ctx, viewer, q, params)
}

// Hashtag lists public top-level posts carrying the given hashtag
func (s *Service) Hashtag(ctx context.Context, viewer *Viewer, tag string, params ListParams) (Page, error) {
	tag = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	q := s.baseListing(ctx, viewer).
		Where("murmur_posts.parent_id IS NULL").
		Joins("INNER JOIN murmur_post_hashtags ON murmur_post_hashtags.post_id = murmur_posts.id").
		Where("murmur_post_hashtags.hashtag = ?", tag)
	return s.chronoPage(ctx, viewer, q, params)
}

// Category lists public top-level posts in a category
func (s *Service) Category(ctx context.Context, viewer *Viewer, name string, params ListParams) (Page, error) {
	q := s.baseListing(ctx, viewer).
		Where("murmur_posts.parent_id IS NULL").
		Where("murmur_posts.category = ?", name)
	return s.chronoPage(ctx, viewer, q, params)
}

// UserPosts lists a user's public top-level posts
func (s *Service) UserPosts(ctx context.Context, viewer *Viewer, authorID int64, params ListParams) (Page, error) {
	q := s.baseListing(ctx, viewer).
		Where("murmur_posts.parent_id IS NULL").
		Where("murmur_posts.author_id = ?", authorID)
	return s.chronoPage(ctx, viewer, q, params)
}

// Comments lists the direct children of a post or comment, newest first
func (s *Service) Comments(ctx context.Context, viewer *Viewer, parentID int64, params ListParams) (Page, error) {
	q := s.baseListing(ctx, viewer).Where("murmur_posts.parent_id = ?", parentID)
	return s.chronoPage(ctx, viewer, q, params)
}

// windowDuration maps a trending window name to its span
func windowDuration(window string) (time.Duration, error) {
	switch window {
	case "", WindowDay:
		return 24 * time.Hour, nil
	case WindowWeek:
		return 7 * 24 * time.Hour, nil
	default:
		return 0, ErrInvalidWindow
	}
}

// Trending lists public top-level posts from the window ordered by cached
// engagement score. Items re-scored between pages may shift across the page
// boundary; that staleness is accepted, not locked away.
func (s *Service) Trending(ctx context.Context, viewer *Viewer, window string, params ListParams) (Page, error) {
	span, err := windowDuration(window)
	if err != nil {
		return Page{}, err
	}
	limit := s.clampLimit(params.Limit)

	// Anonymous pages are viewer-independent and safe to cache
	cacheKey := cache.HashKey("trending", window, params.Cursor, strconv.Itoa(limit))
	if viewer == nil && s.cache != nil {
		var cached Page
		if err := s.cache.GetJSON(cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	q := s.baseListing(ctx, viewer).
		Where("murmur_posts.parent_id IS NULL").
		Where("murmur_posts.created_at >= ?", time.Now().UTC().Add(-span))

	if params.Cursor != "" {
		score, id, ok := parseCompositeCursor(params.Cursor)
		if !ok {
			return emptyPage(), nil
		}
		q = q.Where("(murmur_posts.score < ?) OR (murmur_posts.score = ? AND murmur_posts.id < ?)", score, score, id)
	}

	var posts []*models.Post
	if err := q.Order("murmur_posts.score DESC, murmur_posts.id DESC").
		Limit(limit + 1).Find(&posts).Error; err != nil {
		return Page{}, fmt.Errorf("trending query failed: %w", err)
	}

	page, err := s.finishPage(ctx, viewer, posts, limit, scoreKey)
	if err != nil {
		return Page{}, err
	}

	if viewer == nil && s.cache != nil {
		if err := s.cache.SetJSON(cacheKey, page, 5*time.Minute); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
			s.logger.Warn("trending cache write failed", zap.Error(err))
		}
	}
	return page, nil
}

// Explore merges a recent-chronological half with a top-engagement half,
// deduplicated by post identity. The engagement sub-query alone drives
// pagination, so follow-up pages are engagement-only.
func (s *Service) Explore(ctx context.Context, viewer *Viewer, params ListParams) (Page, error) {
	limit := s.clampLimit(params.Limit)
	half := limit / 2
	if half < 1 {
		half = 1
	}

	// Short TTL: the recent half of the blend goes stale quickly
	cacheKey := cache.HashKey("explore", params.Cursor, strconv.Itoa(limit))
	if viewer == nil && s.cache != nil {
		var cached Page
		if err := s.cache.GetJSON(cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	engQ := s.baseListing(ctx, viewer).Where("murmur_posts.parent_id IS NULL")
	engLimit := half
	if params.Cursor != "" {
		score, id, ok := parseCompositeCursor(params.Cursor)
		if !ok {
			return emptyPage(), nil
		}
		engQ = engQ.Where("(murmur_posts.score < ?) OR (murmur_posts.score = ? AND murmur_posts.id < ?)", score, score, id)
		engLimit = limit
	}

	var top []*models.Post
	if err := engQ.Order("murmur_posts.score DESC, murmur_posts.id DESC").
		Limit(engLimit + 1).Find(&top).Error; err != nil {
		return Page{}, fmt.Errorf("explore engagement query failed: %w", err)
	}
	engPage := paginate(top, engLimit, scoreKey)

	merged := engPage.Items
	if params.Cursor == "" {
		recentLimit := limit - len(engPage.Items)
		var recent []*models.Post
		if err := s.baseListing(ctx, viewer).
			Where("murmur_posts.parent_id IS NULL").
			Order("murmur_posts.id DESC").
			Limit(recentLimit).
			Find(&recent).Error; err != nil {
			return Page{}, fmt.Errorf("explore recent query failed: %w", err)
		}

		seen := make(map[int64]bool, len(recent))
		merged = make([]*models.Post, 0, limit)
		for _, p := range recent {
			seen[p.ID] = true
			merged = append(merged, p)
		}
		for _, p := range engPage.Items {
			if !seen[p.ID] {
				merged = append(merged, p)
			}
		}
	}

	page := Page{Items: merged, HasMore: engPage.HasMore, NextCursor: engPage.NextCursor}
	if err := s.posts.LoadReactionTotals(ctx, page.Items); err != nil {
		return Page{}, err
	}
	page.Items = FilterForViewer(page.Items, viewer)

	if viewer == nil && s.cache != nil {
		if err := s.cache.SetJSON(cacheKey, page, time.Minute); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
			s.logger.Warn("explore cache write failed", zap.Error(err))
		}
	}
	return page, nil
}

// savedRow carries the bookmark row ID alongside the post so the saved
// listing can cursor on save order
type savedRow struct {
	models.Post `gorm:"embedded"`
	SavedID     int64 `gorm:"column:saved_id"`
}

// Saved lists the viewer's bookmarked posts in save order, newest save first
func (s *Service) Saved(ctx context.Context, viewer *Viewer, params ListParams) (Page, error) {
	limit := s.clampLimit(params.Limit)

	q := s.baseListing(ctx, viewer).
		Select("murmur_posts.*, murmur_saved_posts.id AS saved_id").
		Joins("INNER JOIN murmur_saved_posts ON murmur_saved_posts.post_id = murmur_posts.id").
		Where("murmur_saved_posts.user_id = ?", viewer.ID)

	if params.Cursor != "" {
		id, ok := parseIDCursor(params.Cursor)
		if !ok {
			return emptyPage(), nil
		}
		q = q.Where("murmur_saved_posts.id < ?", id)
	}

	var rows []savedRow
	if err := q.Order("murmur_saved_posts.id DESC").Limit(limit + 1).Scan(&rows).Error; err != nil {
		return Page{}, fmt.Errorf("saved query failed: %w", err)
	}

	posts := make([]*models.Post, len(rows))
	savedIDs := make(map[int64]int64, len(rows))
	for i := range rows {
		post := rows[i].Post
		posts[i] = &post
		savedIDs[post.ID] = rows[i].SavedID
	}

	return s.finishPage(ctx, viewer, posts, limit, func(p *models.Post) string {
		return strconv.FormatInt(savedIDs[p.ID], 10)
	})
}

// rankedRow carries the text relevance rank alongside the post
type rankedRow struct {
	models.Post `gorm:"embedded"`
	Relevance   float64 `gorm:"column:relevance"`
}

// Search lists public top-level posts matching the term. Default order is
// relevance with a recency tiebreak; sort=recent gives chronological order.
// An empty term is a client error, not an empty success.
func (s *Service) Search(ctx context.Context, viewer *Viewer, term, sort string, params ListParams) (Page, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return Page{}, ErrEmptySearchTerm
	}

	const match = "to_tsvector('english', murmur_posts.body) @@ plainto_tsquery('english', ?)"
	const rank = "ts_rank(to_tsvector('english', murmur_posts.body), plainto_tsquery('english', ?))"

	switch sort {
	case SortRecent:
		q := s.baseListing(ctx, viewer).
			Where("murmur_posts.parent_id IS NULL").
			Where(match, term)
		return s.chronoPage(ctx, viewer, q, params)
	case "", SortRelevance:
	default:
		return Page{}, ErrInvalidSort
	}

	limit := s.clampLimit(params.Limit)
	q := s.baseListing(ctx, viewer).
		Select("murmur_posts.*, "+rank+" AS relevance", term).
		Where("murmur_posts.parent_id IS NULL").
		Where(match, term)

	if params.Cursor != "" {
		cursorRank, cursorID, ok := parseCompositeCursor(params.Cursor)
		if !ok {
			return emptyPage(), nil
		}
		q = q.Where("("+rank+" < ?) OR ("+rank+" = ? AND murmur_posts.id < ?)",
			term, cursorRank, term, cursorRank, cursorID)
	}

	var rows []rankedRow
	if err := q.Order("relevance DESC, murmur_posts.id DESC").
		Limit(limit + 1).Scan(&rows).Error; err != nil {
		return Page{}, fmt.Errorf("search query failed: %w", err)
	}

	posts := make([]*models.Post, len(rows))
	ranks := make(map[int64]float64, len(rows))
	for i := range rows {
		post := rows[i].Post
		posts[i] = &post
		ranks[post.ID] = rows[i].Relevance
	}

	return s.finishPage(ctx, viewer, posts, limit, func(p *models.Post) string {
		return strconv.FormatFloat(ranks[p.ID], 'f', -1, 64) + ":" + strconv.FormatInt(p.ID, 10)
	})
}

// RefreshScore recomputes and persists a post's engagement score from its
// current counters. Called after every relevant mutation; read-modify-write
// without a lock, so a racing mutation can leave a briefly stale score that
// the next refresh heals.
func (s *Service) RefreshScore(ctx context.Context, postID int64) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return nil
	}
	if err := s.posts.LoadReactionTotals(ctx, []*models.Post{post}); err != nil {
		return err
	}
	return s.posts.UpdateScore(ctx, postID, Score(post, time.Now().UTC()))
}
