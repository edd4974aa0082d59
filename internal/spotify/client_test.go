package spotify

import (
	"strings"
	"testing"
)

func TestParseSearchType(t *testing.T) {
	cases := []struct {
		in   string
		want SearchType
	}{
		{"track", SearchTrack},
		{"episode", SearchEpisode},
		{"SHOW", SearchShow},
		{" playlist ", SearchPlaylist},
		{"podcast", SearchTrack}, // unknown values normalize to track
		{"", SearchTrack},
	}
	for _, tc := range cases {
		if got := ParseSearchType(tc.in); got != tc.want {
			t.Errorf("ParseSearchType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRenderItems(t *testing.T) {
	body := []byte(`{
		"tracks": {
			"items": [
				{
					"name": "Closer",
					"artists": [{"name": "Nine Inch Nails"}],
					"external_urls": {"spotify": "https://open.spotify.com/track/5mc6EyF1OIEOhAkD0Gg9Lc"}
				},
				{
					"name": "Teardrop",
					"artists": [{"name": "Massive Attack"}, {"name": "Elizabeth Fraser"}],
					"external_urls": {"spotify": "https://open.spotify.com/track/67Hna13dNDkZvBpTXRIaOJ"}
				}
			]
		}
	}`)

	out := renderItems(body, SearchTrack)
	if !strings.Contains(out, "1. Closer by Nine Inch Nails (https://open.spotify.com/track/5mc6EyF1OIEOhAkD0Gg9Lc)") {
		t.Fatalf("unexpected rendering:\n%s", out)
	}
	if !strings.Contains(out, "Massive Attack, Elizabeth Fraser") {
		t.Fatalf("multiple artists not joined:\n%s", out)
	}
}

func TestRenderItemsSkipsExplicitTracks(t *testing.T) {
	body := []byte(`{
		"tracks": {
			"items": [
				{"name": "Clean Song", "explicit": false},
				{"name": "Filthy Song", "explicit": true},
				{"name": "Another Clean Song"}
			]
		}
	}`)

	out := renderItems(body, SearchTrack)
	if strings.Contains(out, "Filthy Song") {
		t.Fatalf("explicit track not filtered:\n%s", out)
	}
	if !strings.Contains(out, "1. Clean Song") || !strings.Contains(out, "2. Another Clean Song") {
		t.Fatalf("remaining tracks not renumbered:\n%s", out)
	}

	// The filter only applies to track searches.
	episodes := []byte(`{"episodes": {"items": [{"name": "Raw Interview", "explicit": true}]}}`)
	if out := renderItems(episodes, SearchEpisode); !strings.Contains(out, "Raw Interview") {
		t.Fatalf("non-track result wrongly filtered:\n%s", out)
	}

	allExplicit := []byte(`{"tracks": {"items": [{"name": "X", "explicit": true}]}}`)
	if out := renderItems(allExplicit, SearchTrack); out != "No results found." {
		t.Fatalf("all-filtered result should report no results, got %q", out)
	}
}

func TestRenderItemsTruncatesDescription(t *testing.T) {
	long := strings.Repeat("x", 2000)
	body := []byte(`{"shows": {"items": [{"name": "Radiolab", "publisher": "WNYC", "description": "` + long + `"}]}}`)

	out := renderItems(body, SearchShow)
	if strings.Contains(out, strings.Repeat("x", 1001)) {
		t.Fatalf("description not truncated")
	}
	if !strings.Contains(out, "Radiolab by WNYC") {
		t.Fatalf("publisher missing:\n%s", out)
	}
}

func TestRenderItemsEmpty(t *testing.T) {
	if out := renderItems([]byte(`{"tracks": {"items": []}}`), SearchTrack); out != "No results found." {
		t.Fatalf("got %q", out)
	}
	if out := renderItems([]byte(`{}`), SearchTrack); out != "No results found." {
		t.Fatalf("got %q", out)
	}
}
