package feed

import (
	"testing"
	"time"

	"github.com/murmurapp/murmur/pkg/config"
)

func testService() *Service {
	return NewService(nil, nil, &config.ListingConfig{DefaultPageSize: 20, MaxPageSize: 50})
}

func TestClampLimit(t *testing.T) {
	s := testService()

	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{"zero gets default", 0, 20},
		{"negative gets default", -3, 20},
		{"in range passes through", 15, 15},
		{"ceiling applied", 200, 50},
		{"exact ceiling", 50, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.clampLimit(tt.limit); got != tt.expected {
				t.Errorf("clampLimit(%d) = %d, want %d", tt.limit, got, tt.expected)
			}
		})
	}
}

func TestWindowDuration(t *testing.T) {
	tests := []struct {
		name     string
		window   string
		expected time.Duration
		wantErr  bool
	}{
		{"day window", WindowDay, 24 * time.Hour, false},
		{"week window", WindowWeek, 7 * 24 * time.Hour, false},
		{"empty defaults to day", "", 24 * time.Hour, false},
		{"unknown rejected", "48h", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := windowDuration(tt.window)
			if tt.wantErr {
				if err == nil {
					t.Errorf("windowDuration(%q) expected error", tt.window)
				}
				return
			}
			if err != nil {
				t.Fatalf("windowDuration(%q) unexpected error: %v", tt.window, err)
			}
			if got != tt.expected {
				t.Errorf("windowDuration(%q) = %v, want %v", tt.window, got, tt.expected)
			}
		})
	}
}

func TestViewerBlocksEither(t *testing.T) {
	v := NewViewer(1, false, []int64{2}, []int64{3}, nil, false, false)

	if !v.BlocksEither(2) {
		t.Error("expected forward block to match")
	}
	if !v.BlocksEither(3) {
		t.Error("expected reverse block to match")
	}
	if v.BlocksEither(4) {
		t.Error("unrelated author should not match")
	}

	var anon *Viewer
	if anon.BlocksEither(2) {
		t.Error("nil viewer blocks nobody")
	}
}
