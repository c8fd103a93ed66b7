package feed

import (
	"math"
	"time"

	"github.com/murmurapp/murmur/internal/models"
)

// Engagement weights. Shares count triple, comments double, impressions a
// tenth of a reaction. Decay is exponential with a 24 hour e-folding time,
// so a day-old post keeps exp(-1) of its raw score.
const (
	reactionWeight   = 1.0
	commentWeight    = 2.0
	shareWeight      = 3.0
	impressionWeight = 0.1
	decayHours       = 24.0
)

// Score computes the time-decayed engagement score of a post at the given
// instant. Pure arithmetic over non-negative counters: always finite and
// non-negative. The post must carry its ReactionTotal.
func Score(p *models.Post, now time.Time) float64 {
	raw := float64(p.ReactionTotal)*reactionWeight +
		float64(p.CommentCount)*commentWeight +
		float64(p.ShareCount)*shareWeight +
		float64(p.ImpressionCount)*impressionWeight

	ageHours := now.Sub(p.CreatedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return raw * math.Exp(-ageHours/decayHours)
}
