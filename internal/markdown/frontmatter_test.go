package markdown

import (
	"strings"
	"testing"
	"time"
)

const articleSource = `---
unique_name: my-blog-article
title: My Blog Article
description: A post about structured content.
language: en
publish: true
fields:
  summary: Short version.
category: engineering
---
# Heading

Body text.
`

func TestParseFrontMatter(t *testing.T) {
	meta, body, err := ParseFrontMatter([]byte(articleSource))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	if meta.UniqueName != "my-blog-article" {
		t.Fatalf("unexpected unique name: %q", meta.UniqueName)
	}
	if meta.Title != "My Blog Article" || meta.Description != "A post about structured content." {
		t.Fatalf("metadata lost: %#v", meta)
	}
	if meta.Language != "en" || !meta.Publish {
		t.Fatalf("language/publish lost: %#v", meta)
	}
	if meta.Fields["summary"] != "Short version." {
		t.Fatalf("fields map lost: %#v", meta.Fields)
	}
	if meta.Custom["category"] != "engineering" {
		t.Fatalf("unclaimed keys should land in Custom: %#v", meta.Custom)
	}
	if meta.Raw["title"] != "My Blog Article" || meta.Raw["category"] != "engineering" {
		t.Fatalf("raw map should carry both claimed and custom keys: %#v", meta.Raw)
	}

	text := strings.TrimSpace(string(body))
	if !strings.HasPrefix(text, "# Heading") {
		t.Fatalf("body should start after the frontmatter block: %q", text)
	}
}

func TestParseFrontMatterWithoutBlock(t *testing.T) {
	meta, body, err := ParseFrontMatter([]byte("plain body\n"))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if meta.UniqueName != "" || meta.Title != "" {
		t.Fatalf("expected empty metadata: %#v", meta)
	}
	if strings.TrimSpace(string(body)) != "plain body" {
		t.Fatalf("body lost: %q", body)
	}
}

func TestBuildDocumentLanguagePrecedence(t *testing.T) {
	modified := time.Unix(1700000000, 0)

	doc, err := BuildDocument("es/post.md", "es", []byte(articleSource), modified)
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	if doc.Language != "en" {
		t.Fatalf("frontmatter language should win over the path hint, got %q", doc.Language)
	}
	if doc.FilePath != "es/post.md" || !doc.LastModified.Equal(modified) {
		t.Fatalf("document envelope lost: %#v", doc)
	}

	doc, err = BuildDocument("es/plain.md", "es", []byte("no frontmatter\n"), modified)
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	if doc.Language != "es" {
		t.Fatalf("path hint should apply when frontmatter is silent, got %q", doc.Language)
	}
}
