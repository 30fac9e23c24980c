package markdown

import (
	"strings"
	"testing"
)

func TestGoldmarkRendererDefaults(t *testing.T) {
	r := NewGoldmarkRenderer(RenderOptions{})

	html, err := r.Render([]byte("# Title\n\nSome ~~old~~ text.\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := string(html)
	if !strings.Contains(out, `<h1 id="title">Title</h1>`) {
		t.Fatalf("auto heading ids should be enabled: %q", out)
	}
	if !strings.Contains(out, "<del>old</del>") {
		t.Fatalf("GFM strikethrough should be on by default: %q", out)
	}
}

func TestGoldmarkRendererSafeMode(t *testing.T) {
	r := NewGoldmarkRenderer(RenderOptions{})
	source := []byte("<script>alert(1)</script>\n")

	unsafe, err := r.Render(source)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(unsafe), "<script>") {
		t.Fatalf("raw html should pass through by default: %q", unsafe)
	}

	safe, err := r.RenderWithOptions(source, RenderOptions{SafeMode: true})
	if err != nil {
		t.Fatalf("RenderWithOptions: %v", err)
	}
	if strings.Contains(string(safe), "<script>") {
		t.Fatalf("safe mode should suppress raw html: %q", safe)
	}
}

func TestGoldmarkRendererHardWraps(t *testing.T) {
	r := NewGoldmarkRenderer(RenderOptions{})
	source := []byte("line one\nline two\n")

	wrapped, err := r.RenderWithOptions(source, RenderOptions{HardWraps: true})
	if err != nil {
		t.Fatalf("RenderWithOptions: %v", err)
	}
	if !strings.Contains(string(wrapped), "<br") {
		t.Fatalf("hard wraps should insert breaks: %q", wrapped)
	}
}

func TestCollectExtensionsIgnoresUnknown(t *testing.T) {
	exts := collectExtensions([]string{"table", "Table", "made-up", ""})
	if len(exts) != 1 {
		t.Fatalf("expected one deduplicated extension, got %d", len(exts))
	}
}
