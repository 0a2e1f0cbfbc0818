package classify

import "testing"

func TestTaxonomyApp(t *testing.T) {
	tax := DefaultTaxonomy()

	cases := []struct {
		name string
		want Category
	}{
		{"Visual Studio Code", "productive_coding"},
		{"GNOME Terminal", "productive_coding"},
		{"Obsidian", "productive_writing"},
		{"Figma", "productive_design"},
		{"Firefox", "productive_research"},
		{"Steam", "distraction_games"},
		{"Discord", "distraction_social"},
		{"Netflix", "distraction_video"},
		{"Blender", Neutral},
		{"", Neutral},
	}

	for _, tc := range cases {
		if got := tax.App(tc.name); got != tc.want {
			t.Errorf("App(%q) = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestTaxonomyProductiveWinsOverlap(t *testing.T) {
	tax := DefaultTaxonomy()

	// "code" matches a productive keyword; even if a distraction keyword also
	// matched, the productive table is consulted first.
	if got := tax.App("code - youtube downloader"); !got.IsProductive() {
		t.Fatalf("productive match must win on overlap, got %s", got)
	}
}

func TestTaxonomyDomain(t *testing.T) {
	tax := DefaultTaxonomy()

	cases := []struct {
		domain string
		want   Category
	}{
		{"youtube.com", "distraction_video"},
		{"reddit.com", "distraction_news"},
		{"facebook.com", "distraction_social"},
		{"github.com", Neutral},
		{"docs.python.org", Neutral},
	}

	for _, tc := range cases {
		if got := tax.Domain(tc.domain); got != tc.want {
			t.Errorf("Domain(%q) = %s, want %s", tc.domain, got, tc.want)
		}
	}
}

func TestCategoryPredicates(t *testing.T) {
	if !Category("distraction_social").IsDistraction() {
		t.Fatalf("expected distraction")
	}
	if !Category("productive_coding").IsProductive() {
		t.Fatalf("expected productive")
	}
	if Neutral.IsDistraction() || Neutral.IsProductive() {
		t.Fatalf("neutral is neither")
	}
}

func TestTaxonomyDeterministic(t *testing.T) {
	tax := DefaultTaxonomy()

	// Repeated categorization of the same name must be stable even when a
	// name could match keywords in several subcategories.
	first := tax.App("discord game overlay")
	for i := 0; i < 50; i++ {
		if got := tax.App("discord game overlay"); got != first {
			t.Fatalf("categorization flapped: %s then %s", first, got)
		}
	}
}
