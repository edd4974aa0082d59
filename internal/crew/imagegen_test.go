package crew

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type fakeGenerator struct {
	b64 string
	err error
}

func (f *fakeGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return f.b64, f.err
}

func TestImageGenToolWritesFile(t *testing.T) {
	dir := t.TempDir()
	png := []byte("\x89PNG fake image bytes")
	gen := &fakeGenerator{b64: base64.StdEncoding.EncodeToString(png)}

	tool := NewImageGenTool(gen, dir, "http://localhost:8000/files")
	tool.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	url, err := tool.Run(context.Background(), `{"prompt":"neon city"}`)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:8000/files/images/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("unexpected url %q", url)
	}

	filename := filepath.Base(url)
	data, err := os.ReadFile(filepath.Join(dir, "images", filename))
	if err != nil {
		t.Fatalf("image file not written: %v", err)
	}
	if string(data) != string(png) {
		t.Fatalf("file content mismatch")
	}
}

func TestImageGenToolRequiresPrompt(t *testing.T) {
	tool := NewImageGenTool(&fakeGenerator{}, t.TempDir(), "http://x/files")
	if _, err := tool.Run(context.Background(), `{}`); err == nil {
		t.Fatal("expected error for missing prompt")
	}
}

func TestStripHTML(t *testing.T) {
	html := `<html><head><style>body{}</style><script>evil()</script></head>
<body><h1>Title</h1><p>Some   text</p></body></html>`
	got := stripHTML(html)
	if got != "Title Some text" {
		t.Fatalf("stripHTML = %q", got)
	}
}
