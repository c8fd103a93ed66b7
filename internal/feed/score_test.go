package feed

import (
	"math"
	"testing"
	"time"

	"github.com/murmurapp/murmur/internal/models"
)

func TestScore(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		post     models.Post
		now      time.Time
		expected float64
	}{
		{
			name: "day old post decays by exp(-1)",
			post: models.Post{
				CreatedAt:       t0,
				ReactionTotal:   10,
				CommentCount:    2,
				ShareCount:      0,
				ImpressionCount: 100,
			},
			now:      t0.Add(24 * time.Hour),
			expected: 24 * math.Exp(-1), // ≈ 8.829
		},
		{
			name: "fresh post keeps raw score",
			post: models.Post{
				CreatedAt:     t0,
				ReactionTotal: 5,
				ShareCount:    1,
			},
			now:      t0,
			expected: 8,
		},
		{
			name:     "no engagement scores zero",
			post:     models.Post{CreatedAt: t0},
			now:      t0.Add(3 * time.Hour),
			expected: 0,
		},
		{
			name: "clock skew clamps to zero age",
			post: models.Post{
				CreatedAt:     t0,
				ReactionTotal: 4,
			},
			now:      t0.Add(-time.Hour),
			expected: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(&tt.post, tt.now)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Score() = %v, want %v", got, tt.expected)
			}
			if got < 0 || math.IsInf(got, 0) || math.IsNaN(got) {
				t.Errorf("Score() = %v, want finite non-negative", got)
			}
		})
	}
}

func TestScoreIdempotent(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	post := &models.Post{
		CreatedAt:       t0,
		ReactionTotal:   7,
		CommentCount:    3,
		ShareCount:      2,
		ImpressionCount: 50,
	}
	now := t0.Add(36 * time.Hour)

	first := Score(post, now)
	second := Score(post, now)
	if first != second {
		t.Errorf("Score() not idempotent: %v != %v", first, second)
	}
}

func TestScoreWeekOldNearZero(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	post := &models.Post{CreatedAt: t0, ReactionTotal: 100}

	fresh := Score(post, t0)
	weekOld := Score(post, t0.Add(7*24*time.Hour))
	if weekOld >= fresh*math.Exp(-6) {
		t.Errorf("expected week-old score below %v, got %v", fresh*math.Exp(-6), weekOld)
	}
	if weekOld <= 0 {
		t.Errorf("decay should never reach exactly zero, got %v", weekOld)
	}
}
