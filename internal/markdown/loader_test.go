package markdown

import (
	"context"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"welcome.md":       {Data: []byte("---\ntitle: Welcome\n---\nHello.\n")},
		"es/welcome.md":    {Data: []byte("---\ntitle: Bienvenida\n---\nHola.\n")},
		"es/deep/notes.md": {Data: []byte("deep notes\n")},
		"readme.txt":       {Data: []byte("not markdown\n")},
	}
}

func TestLoaderLoadFile(t *testing.T) {
	loader := NewLoader(testFS(), LoaderConfig{Languages: []string{"es"}})
	ctx := context.Background()

	doc, err := loader.LoadFile(ctx, "es/welcome.md")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if doc.Language != "es" {
		t.Fatalf("leading path segment should resolve the language, got %q", doc.Language)
	}
	if doc.FrontMatter.Title != "Bienvenida" {
		t.Fatalf("frontmatter lost: %#v", doc.FrontMatter)
	}
	if len(doc.Checksum) == 0 {
		t.Fatal("checksum should be populated")
	}

	doc, err = loader.LoadFile(ctx, "welcome.md")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if doc.Language != "" {
		t.Fatalf("root files should carry no language without a default, got %q", doc.Language)
	}
}

func TestLoaderDefaultLanguage(t *testing.T) {
	loader := NewLoader(testFS(), LoaderConfig{DefaultLanguage: "en", Languages: []string{"es"}})

	doc, err := loader.LoadFile(context.Background(), "welcome.md")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if doc.Language != "en" {
		t.Fatalf("default language should apply, got %q", doc.Language)
	}
}

func TestLoaderLoadDirectory(t *testing.T) {
	loader := NewLoader(testFS(), LoaderConfig{Languages: []string{"es"}, Recursive: true})

	docs, err := loader.LoadDirectory(context.Background(), ".")
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 markdown documents, got %d", len(docs))
	}
	// Ordered by path.
	if docs[0].FilePath != "es/deep/notes.md" || docs[2].FilePath != "welcome.md" {
		t.Fatalf("documents should sort by path: %q, %q, %q", docs[0].FilePath, docs[1].FilePath, docs[2].FilePath)
	}
}

func TestLoaderNonRecursive(t *testing.T) {
	loader := NewLoader(testFS(), LoaderConfig{})

	docs, err := loader.LoadDirectory(context.Background(), ".")
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if len(docs) != 1 || docs[0].FilePath != "welcome.md" {
		t.Fatalf("non-recursive walk should stop at the root: %#v", docs)
	}
}
