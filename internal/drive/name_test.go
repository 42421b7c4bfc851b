package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFolderName(t *testing.T) {
	cases := []struct {
		name  string
		order int
		title string
	}{
		{"01. Intro", 1, "Intro"},
		{"01.Networking", 1, "Networking"},
		{"02 - How it works", 2, "How it works"},
		{"3-Advanced", 3, "Advanced"},
		{"10 Deployment", 10, "Deployment"},
		{"Extras", 999, "Extras"},
		{"  05. Padded  ", 5, "Padded"},
		// Digits only: the remainder is empty, full trimmed name is the title
		{"07", 7, "07"},
		{"", 999, ""},
	}

	for _, tc := range cases {
		got := ParseFolderName(tc.name)
		assert.Equal(t, tc.order, got.Order, "order for %q", tc.name)
		assert.Equal(t, tc.title, got.Title, "title for %q", tc.name)
	}
}

func TestParseFileName(t *testing.T) {
	cases := []struct {
		name  string
		order int
		title string
	}{
		{"01 - Intro.mp4", 1, "Intro.mp4"},
		{"02. Setup.mp4", 2, "Setup.mp4"},
		{"3-Recap.mkv", 3, "Recap.mkv"},
		// Extension stays on the title; stripping is not this layer's job
		{"04 Deep Dive.webm", 4, "Deep Dive.webm"},
		// No digit prefix: files float to the front, not the back
		{"bonus.mp4", 0, "bonus.mp4"},
		{"", 0, ""},
	}

	for _, tc := range cases {
		got := ParseFileName(tc.name)
		assert.Equal(t, tc.order, got.Order, "order for %q", tc.name)
		assert.Equal(t, tc.title, got.Title, "title for %q", tc.name)
	}
}

// Re-parsing a parsed title without a digit prefix must not change it
func TestParseFolderNameIdempotentTitle(t *testing.T) {
	first := ParseFolderName("01. Networking Basics")
	second := ParseFolderName(first.Title)
	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, 999, second.Order)
}
