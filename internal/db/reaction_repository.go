package db

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/murmurapp/murmur/internal/models"
)

// ReactionRepository provides reaction-related database operations.
// Count rows and reactor rows always move in one transaction so the
// per-kind count equals the cardinality of the reactor set.
type ReactionRepository struct {
	*Repository
}

// NewReactionRepository creates a new reaction repository
func NewReactionRepository(repo *Repository) *ReactionRepository {
	return &ReactionRepository{Repository: repo}
}

// Add records a reaction. Returns true when the reaction was new; a repeat
// reaction of the same kind by the same user is a no-op.
func (r *ReactionRepository) Add(ctx context.Context, postID, userID int64, kind string) (bool, error) {
	added := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reaction := &models.Reaction{
			PostID:    postID,
			UserID:    userID,
			Kind:      kind,
			CreatedAt: time.Now().UTC(),
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(reaction)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		added = true

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "post_id"}, {Name: "kind"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"count": gorm.Expr("murmur_reaction_counts.count + 1"),
			}),
		}).Create(&models.ReactionCount{PostID: postID, Kind: kind, Count: 1}).Error
	})
	return added, err
}

// Remove deletes a reaction. Returns true when a row was removed.
func (r *ReactionRepository) Remove(ctx context.Context, postID, userID int64, kind string) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ? AND kind = ?", postID, userID, kind).
			Delete(&models.Reaction{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true

		return tx.Model(&models.ReactionCount{}).
			Where("post_id = ? AND kind = ? AND count > 0", postID, kind).
			UpdateColumn("count", gorm.Expr("count - 1")).Error
	})
	return removed, err
}

// TotalForPost returns the sum of all per-kind reaction counts of a post
func (r *ReactionRepository) TotalForPost(ctx context.Context, postID int64) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.ReactionCount{}).
		Where("post_id = ?", postID).
		Select("COALESCE(SUM(count), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// CountsForPost returns the per-kind counts of a post keyed by kind
func (r *ReactionRepository) CountsForPost(ctx context.Context, postID int64) (map[string]int64, error) {
	var rows []models.ReactionCount
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Kind] = row.Count
	}
	return counts, nil
}

// KindsForUser returns the kinds with which a user reacted to a post
func (r *ReactionRepository) KindsForUser(ctx context.Context, postID, userID int64) ([]string, error) {
	var kinds []string
	if err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Pluck("kind", &kinds).Error; err != nil {
		return nil, err
	}
	return kinds, nil
}
