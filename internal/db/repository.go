package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/murmurapp/murmur/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the underlying gorm handle for query builders
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByHandle retrieves a user by handle
func (r *UserRepository) GetByHandle(ctx context.Context, handle string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("handle = ?", handle).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// TouchActive records user activity
func (r *UserRepository) TouchActive(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_active_at", time.Now().UTC()).Error
}

// BlockedIDs returns the IDs of users blocked by userID
func (r *UserRepository) BlockedIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&models.Block{}).
		Where("blocker_id = ?", userID).
		Pluck("blocked_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// BlockerIDs returns the IDs of users who block userID (reverse direction
// of BlockedIDs; both feed the symmetric visibility check)
func (r *UserRepository) BlockerIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&models.Block{}).
		Where("blocked_id = ?", userID).
		Pluck("blocker_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// AddBlock records a block relationship; adding an existing block is a no-op
func (r *UserRepository) AddBlock(ctx context.Context, blockerID, blockedID int64) error {
	block := &models.Block{
		BlockerID: blockerID,
		BlockedID: blockedID,
		CreatedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Create(block).Error
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return nil
	}
	return err
}

// RemoveBlock removes a block relationship
func (r *UserRepository) RemoveBlock(ctx context.Context, blockerID, blockedID int64) error {
	return r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{}).Error
}

// KeywordFilters returns a user's muted keywords, lowercase
func (r *UserRepository) KeywordFilters(ctx context.Context, userID int64) ([]string, error) {
	var keywords []string
	if err := r.db.WithContext(ctx).Model(&models.KeywordFilter{}).
		Where("user_id = ?", userID).
		Order("keyword").
		Pluck("keyword", &keywords).Error; err != nil {
		return nil, err
	}
	return keywords, nil
}

// ReplaceKeywordFilters replaces a user's muted keyword set
func (r *UserRepository) ReplaceKeywordFilters(ctx context.Context, userID int64, keywords []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.KeywordFilter{}).Error; err != nil {
			return err
		}
		seen := make(map[string]bool, len(keywords))
		for _, kw := range keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			if err := tx.Create(&models.KeywordFilter{UserID: userID, Keyword: kw}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CategoryRepository provides category-related database operations
type CategoryRepository struct {
	*Repository
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(repo *Repository) *CategoryRepository {
	return &CategoryRepository{Repository: repo}
}

// GetByName retrieves a category by name
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// List retrieves all categories ordered by name
func (r *CategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Seed inserts any missing categories from the given set
func (r *CategoryRepository) Seed(ctx context.Context, categories []models.Category) error {
	for i := range categories {
		existing, err := r.GetByName(ctx, categories[i].Name)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		categories[i].CreatedAt = time.Now().UTC()
		if err := r.db.WithContext(ctx).Create(&categories[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// IncrementPostCount adjusts a category's post counter by delta
func (r *CategoryRepository) IncrementPostCount(ctx context.Context, name string, delta int64) error {
	return r.db.WithContext(ctx).Model(&models.Category{}).
		Where("name = ?", name).
		UpdateColumn("post_count", gorm.Expr("post_count + ?", delta)).Error
}
