package export

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	s := strings.Repeat("é", 10)
	got := truncate(s, 4)
	if !utf8.ValidString(got) {
		t.Errorf("truncate produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 4 {
		t.Errorf("rune count = %d, want 4", n)
	}

	if got := truncate("short", 120); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	// Multi-byte strings longer than n bytes but within n runes stay whole.
	if got := truncate("ééé", 3); got != "ééé" {
		t.Errorf("truncate(ééé, 3) = %q", got)
	}
}
