package models

import (
	"reflect"
	"testing"
)

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []string
	}{
		{"no tags", "just some text", []string{}},
		{"single tag", "hello #world", []string{"world"}},
		{"uppercase normalized", "big #SPOILER ahead", []string{"spoiler"}},
		{"deduplicated", "#go and #go again", []string{"go"}},
		{"alphanumeric run stops at punctuation", "see #rust-lang", []string{"rust"}},
		{"digits kept", "#2024 recap", []string{"2024"}},
		{"multiple in order", "#b then #a then #b", []string{"b", "a"}},
		{"bare hash ignored", "just a # sign", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractHashtags(tt.body)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ExtractHashtags(%q) = %v, want %v", tt.body, got, tt.expected)
			}
		})
	}
}

func TestValidReactionKind(t *testing.T) {
	for _, k := range ReactionKinds {
		if !ValidReactionKind(k) {
			t.Errorf("ValidReactionKind(%q) = false, want true", k)
		}
	}
	for _, k := range []string{"", "thumbsup", "LIKE"} {
		if ValidReactionKind(k) {
			t.Errorf("ValidReactionKind(%q) = true, want false", k)
		}
	}
}

func TestValidVisibility(t *testing.T) {
	for _, v := range []string{VisibilityPublic, VisibilityModerated, VisibilityDeleted} {
		if !ValidVisibility(v) {
			t.Errorf("ValidVisibility(%q) = false, want true", v)
		}
	}
	if ValidVisibility("hidden") {
		t.Error("ValidVisibility(\"hidden\") = true, want false")
	}
}
