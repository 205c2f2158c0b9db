package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWorkSlug_Deterministic(t *testing.T) {
	from, to := date(2026, 3, 1), date(2026, 3, 14)

	a := WorkSlug("Night Shift Catering", from, to)
	b := WorkSlug("Night Shift Catering", from, to)
	if a != b {
		t.Errorf("same inputs must converge: %q vs %q", a, b)
	}
	if a != "night-shift-catering-2026-03-01-2026-03-14" {
		t.Errorf("unexpected slug: %q", a)
	}
}

func TestWorkSlug_CaseAndPunctuationFolded(t *testing.T) {
	from, to := date(2026, 3, 1), date(2026, 3, 14)

	variants := []string{
		"Night Shift: Catering!",
		"night   shift CATERING",
		"Night-Shift (Catering)",
	}
	want := WorkSlug("night shift catering", from, to)
	for _, v := range variants {
		if got := WorkSlug(v, from, to); got != want {
			t.Errorf("WorkSlug(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestWorkSlug_ASCIIFolding(t *testing.T) {
	from, to := date(2026, 5, 2), date(2026, 5, 2)

	got := WorkSlug("Café Décor Sétup", from, to)
	want := "cafe-decor-setup-2026-05-02-2026-05-02"
	if got != want {
		t.Errorf("diacritics must fold to ASCII: got %q, want %q", got, want)
	}
}

func TestWorkSlug_DateRangeDisambiguates(t *testing.T) {
	from := date(2026, 3, 1)

	a := WorkSlug("gaffer", from, date(2026, 3, 2))
	b := WorkSlug("gaffer", from, date(2026, 3, 3))
	if a == b {
		t.Error("different date ranges must produce different slugs")
	}
}
