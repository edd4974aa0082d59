package intent

import "testing"

func TestDetect(t *testing.T) {
	cases := []struct {
		message string
		want    Mode
	}{
		{"create playlist of 80s rock", ModePlaylist},
		{"Make me a playlist for a road trip", ModePlaylist},
		{"I need some songs for studying", ModePlaylist},
		{"any podcasts for my commute?", ModePlaylist},
		{"Got recommendations?", ModePlaylist},
		{"MUSIC FOR a rainy day", ModePlaylist},
		{"how are you today", ModeChat},
		{"tell me about the matrix", ModeChat},
		{"", ModeChat},
	}
	for _, tc := range cases {
		if got := Detect(tc.message); got != tc.want {
			t.Errorf("Detect(%q) = %q, want %q", tc.message, got, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	if m, ok := Parse("chat"); !ok || m != ModeChat {
		t.Fatalf("Parse(chat) = %q, %v", m, ok)
	}
	if m, ok := Parse("Playlist"); !ok || m != ModePlaylist {
		t.Fatalf("Parse(Playlist) = %q, %v", m, ok)
	}
	if _, ok := Parse("auto"); ok {
		t.Fatalf("auto must request detection, not a forced mode")
	}
	if _, ok := Parse(""); ok {
		t.Fatalf("empty mode must request detection")
	}
}

func TestForcedModeBypassesDetection(t *testing.T) {
	// A playlist-sounding message with a forced chat mode stays chat:
	// callers consult Parse first and only Detect when it reports auto.
	forced, ok := Parse("chat")
	if !ok {
		t.Fatal("expected forced mode")
	}
	if forced != ModeChat {
		t.Fatalf("forced mode = %q, want chat", forced)
	}
	if Detect("create playlist of 80s rock") != ModePlaylist {
		t.Fatal("sanity: the message itself classifies as playlist")
	}
}
