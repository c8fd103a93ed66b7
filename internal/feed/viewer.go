package feed

// Viewer is the authenticated actor evaluating content visibility. A nil
// *Viewer means the request is anonymous.
type Viewer struct {
	ID      int64
	IsAdmin bool

	// Blocked holds users this viewer blocks; BlockedBy holds users who
	// block this viewer. Both feed the symmetric block check.
	Blocked   map[int64]struct{}
	BlockedBy map[int64]struct{}

	// Content filter preferences
	ContentFiltering     bool
	ShowSensitiveContent bool
	KeywordFilters       []string
}

// NewViewer builds a Viewer from resolved account state
func NewViewer(id int64, isAdmin bool, blocked, blockedBy []int64, keywordFilters []string, contentFiltering, showSensitive bool) *Viewer {
	v := &Viewer{
		ID:                   id,
		IsAdmin:              isAdmin,
		Blocked:              make(map[int64]struct{}, len(blocked)),
		BlockedBy:            make(map[int64]struct{}, len(blockedBy)),
		ContentFiltering:     contentFiltering,
		ShowSensitiveContent: showSensitive,
		KeywordFilters:       keywordFilters,
	}
	for _, id := range blocked {
		v.Blocked[id] = struct{}{}
	}
	for _, id := range blockedBy {
		v.BlockedBy[id] = struct{}{}
	}
	return v
}

// BlocksEither reports whether the block relationship between the viewer
// and authorID holds in either direction
func (v *Viewer) BlocksEither(authorID int64) bool {
	if v == nil {
		return false
	}
	if _, ok := v.Blocked[authorID]; ok {
		return true
	}
	_, ok := v.BlockedBy[authorID]
	return ok
}

// BlockedList returns the viewer's own block list as a slice, for pushing
// into store queries as a negative-author-set filter
func (v *Viewer) BlockedList() []int64 {
	if v == nil || len(v.Blocked) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(v.Blocked))
	for id := range v.Blocked {
		ids = append(ids, id)
	}
	return ids
}
