package markdown

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the structured metadata block of a markdown document. Fields
// maps field unique names to raw string values; Custom collects every key the
// envelope does not claim.
type FrontMatter struct {
	UniqueName  string
	Title       string
	Description string
	Language    string
	Publish     bool
	Fields      map[string]string
	Custom      map[string]any
	Raw         map[string]any
}

// Document is one parsed markdown file. BodyHTML stays empty until a renderer
// is applied so callers can render lazily.
type Document struct {
	FilePath     string
	Language     string
	FrontMatter  FrontMatter
	Body         []byte
	BodyHTML     []byte
	LastModified time.Time
	Checksum     []byte
}

// ParseFrontMatter extracts metadata and the markdown body from the supplied
// source bytes.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	reader := bytes.NewReader(source)
	body, err := frontmatter.Parse(reader, &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return envelopeToFrontMatter(meta), body, nil
}

// BuildDocument assembles a Document from a file path, a language hint, raw
// content, and the modification time. A frontmatter language wins over the
// hint derived from the path.
func BuildDocument(path string, language string, source []byte, modified time.Time) (*Document, error) {
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}

	if meta.Language != "" {
		language = meta.Language
	}

	return &Document{
		FilePath:     path,
		Language:     language,
		FrontMatter:  meta,
		Body:         body,
		LastModified: modified,
	}, nil
}

type frontMatterEnvelope struct {
	UniqueName  string            `yaml:"unique_name"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Language    string            `yaml:"language"`
	Publish     bool              `yaml:"publish"`
	Fields      map[string]string `yaml:"fields"`
	Custom      map[string]any    `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) FrontMatter {
	if env.Custom == nil {
		env.Custom = map[string]any{}
	}

	raw := make(map[string]any, len(env.Custom)+6)
	for key, value := range env.Custom {
		raw[key] = value
	}

	if env.UniqueName != "" {
		raw["unique_name"] = env.UniqueName
	}
	if env.Title != "" {
		raw["title"] = env.Title
	}
	if env.Description != "" {
		raw["description"] = env.Description
	}
	if env.Language != "" {
		raw["language"] = env.Language
	}
	if len(env.Fields) > 0 {
		raw["fields"] = cloneStringValues(env.Fields)
	}
	raw["publish"] = env.Publish

	return FrontMatter{
		UniqueName:  env.UniqueName,
		Title:       env.Title,
		Description: env.Description,
		Language:    env.Language,
		Publish:     env.Publish,
		Fields:      cloneStringValues(env.Fields),
		Custom:      cloneValues(env.Custom),
		Raw:         raw,
	}
}

func cloneStringValues(input map[string]string) map[string]string {
	if input == nil {
		return map[string]string{}
	}

	out := make(map[string]string, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}

func cloneValues(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
