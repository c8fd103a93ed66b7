package feed

import (
	"strings"

	"github.com/murmurapp/murmur/internal/models"
)

// IsVisible decides whether a viewer may see a content item. Rules apply in
// order and each is a hard exclusion:
//
//  1. Non-public items are hidden from everyone except the author and admins.
//  2. A block in either direction hides the item.
//  3. With content filtering enabled, items carrying a content warning are
//     hidden unless the viewer opts into sensitive content, and items whose
//     body contains a muted keyword (case-insensitive substring) are hidden.
//
// An anonymous viewer (nil) is subject to rule 1 only. The function is pure;
// every listing surface must apply it identically.
func IsVisible(p *models.Post, v *Viewer) bool {
	if p.Visibility != models.VisibilityPublic {
		if v == nil {
			return false
		}
		if !v.IsAdmin && v.ID != p.AuthorID {
			return false
		}
	}
	if v == nil {
		return true
	}

	if v.BlocksEither(p.AuthorID) {
		return false
	}

	if v.ContentFiltering {
		if p.ContentWarning != "" && !v.ShowSensitiveContent {
			return false
		}
		body := strings.ToLower(p.Body)
		for _, kw := range v.KeywordFilters {
			if kw != "" && strings.Contains(body, kw) {
				return false
			}
		}
	}

	return true
}

// FilterForViewer removes items the viewer may not see. This is the
// correctness fallback for rules the store query cannot express, the
// reverse-block check in particular. Order is preserved.
func FilterForViewer(items []*models.Post, v *Viewer) []*models.Post {
	filtered := make([]*models.Post, 0, len(items))
	for _, item := range items {
		if IsVisible(item, v) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
