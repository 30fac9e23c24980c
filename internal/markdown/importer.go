package markdown

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/goliatone/go-content-engine/internal/content"
	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/goliatone/go-content-engine/internal/identity"
	"github.com/goliatone/go-content-engine/internal/logging"
	"github.com/goliatone/go-content-engine/internal/schema"
	"github.com/goliatone/go-content-engine/pkg/interfaces"
)

var (
	ErrContentServiceRequired = errors.New("markdown importer: content service is required")
	ErrSchemaServiceRequired  = errors.New("markdown importer: content type service is required")
	ErrUniqueNameMissing      = errors.New("markdown importer: document unique name could not be determined")
)

// ImportOptions scopes one import run to a realm and a content type.
type ImportOptions struct {
	RealmID       uuid.UUID
	ContentTypeID uuid.UUID
	ActorID       uuid.UUID
	// BodyField names the rich text field that receives the rendered HTML
	// body. Empty skips body mapping; documents then carry frontmatter
	// fields only.
	BodyField string
	// Publish publishes every imported instance across all slots, in
	// addition to any per-document publish flag.
	Publish bool
	// DryRun parses and maps documents without writing.
	DryRun bool
}

// ImportResult reports what one run did.
type ImportResult struct {
	CreatedIDs []uuid.UUID
	UpdatedIDs []uuid.UUID
	SkippedIDs []uuid.UUID
	Errors     []error
}

// ImporterConfig carries the collaborators an Importer persists through.
type ImporterConfig struct {
	Content      content.Service
	ContentTypes schema.Service
	Renderer     Renderer
	Logger       interfaces.Logger
}

// Importer maps markdown documents onto content instances. Documents sharing
// a unique name become one instance: the language-less document fills the
// invariant slot and each language document fills its language slot.
type Importer struct {
	content      content.Service
	contentTypes schema.Service
	renderer     Renderer
	logger       interfaces.Logger
}

// NewImporter builds an Importer from the supplied configuration. A nil
// renderer falls back to goldmark defaults.
func NewImporter(cfg ImporterConfig) *Importer {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = NewGoldmarkRenderer(RenderOptions{})
	}
	return &Importer{
		content:      cfg.Content,
		contentTypes: cfg.ContentTypes,
		renderer:     renderer,
		logger:       logger,
	}
}

// ImportDocument imports a single markdown document.
func (i *Importer) ImportDocument(ctx context.Context, doc *Document, opts ImportOptions) (*ImportResult, error) {
	return i.ImportDocuments(ctx, []*Document{doc}, opts)
}

// ImportDocuments imports an arbitrary slice of documents, grouping them by
// unique name. Groups fail independently; the first group error is returned
// after every group has been attempted.
func (i *Importer) ImportDocuments(ctx context.Context, docs []*Document, opts ImportOptions) (*ImportResult, error) {
	if i.content == nil {
		return nil, ErrContentServiceRequired
	}
	if i.contentTypes == nil {
		return nil, ErrSchemaServiceRequired
	}

	ct, err := i.contentTypes.Get(ctx, domain.NewAggregateID(opts.RealmID, opts.ContentTypeID))
	if err != nil {
		return nil, fmt.Errorf("markdown importer: content type lookup: %w", err)
	}
	fieldIDs := fieldsByName(ct)

	grouped, order, err := groupByUniqueName(docs)
	if err != nil {
		return nil, err
	}

	acc := &ImportResult{}
	for _, name := range order {
		if err := i.applyGroup(ctx, name, grouped[name], fieldIDs, opts, acc); err != nil {
			acc.Errors = append(acc.Errors, err)
		}
	}
	return acc, firstError(acc.Errors)
}

func (i *Importer) applyGroup(ctx context.Context, name string, docs []*Document, fieldIDs map[string]uuid.UUID, opts ImportOptions, acc *ImportResult) error {
	sortDocuments(docs)

	req := content.CreateOrReplaceRequest{
		RealmID:       opts.RealmID,
		ContentTypeID: opts.ContentTypeID,
		Locales:       map[uuid.UUID]content.LocalePayload{},
		ActorID:       opts.ActorID,
	}

	invariantSeen := false
	publish := opts.Publish

	for _, doc := range docs {
		if doc.FrontMatter.Publish {
			publish = true
		}

		payload, err := i.buildPayload(doc, name, fieldIDs, opts.BodyField)
		if err != nil {
			return err
		}

		if doc.Language == "" {
			req.Invariant = payload
			invariantSeen = true
			continue
		}
		req.Locales[identity.LanguageUUID(doc.Language)] = payload
	}

	// Every instance needs an invariant slot; a translations-only group
	// still gets a minimal one carrying the shared name.
	if !invariantSeen {
		req.Invariant = content.LocalePayload{UniqueName: name}
	}

	id := identity.ContentUUID(opts.RealmID.String(), opts.ContentTypeID, name)
	req.ID = &id

	if opts.DryRun {
		acc.SkippedIDs = append(acc.SkippedIDs, id)
		return nil
	}

	result, err := i.content.CreateOrReplace(ctx, req)
	if err != nil {
		return fmt.Errorf("markdown importer: import %s: %w", name, err)
	}

	if result.Created {
		acc.CreatedIDs = append(acc.CreatedIDs, result.Content.ID)
	} else {
		acc.UpdatedIDs = append(acc.UpdatedIDs, result.Content.ID)
	}

	if publish {
		if _, err := i.content.Publish(ctx, content.PublishRequest{
			RealmID:   opts.RealmID,
			ContentID: result.Content.ID,
			ActorID:   opts.ActorID,
		}); err != nil {
			return fmt.Errorf("markdown importer: publish %s: %w", name, err)
		}
	}

	logging.WithFields(i.logger, map[string]any{
		"content_id":  result.Content.ID,
		"unique_name": name,
		"documents":   len(docs),
		"created":     result.Created,
	}).Info("markdown document group imported")

	return nil
}

func (i *Importer) buildPayload(doc *Document, name string, fieldIDs map[string]uuid.UUID, bodyField string) (content.LocalePayload, error) {
	payload := content.LocalePayload{
		UniqueName:  name,
		DisplayName: optionalString(doc.FrontMatter.Title),
		Description: optionalString(doc.FrontMatter.Description),
		FieldValues: map[uuid.UUID]string{},
	}

	for fieldName, value := range doc.FrontMatter.Fields {
		id, ok := fieldIDs[strings.ToLower(strings.TrimSpace(fieldName))]
		if !ok {
			return content.LocalePayload{}, fmt.Errorf("markdown importer: %s: frontmatter field %q is not part of the content type", doc.FilePath, fieldName)
		}
		payload.FieldValues[id] = value
	}

	bodyField = strings.ToLower(strings.TrimSpace(bodyField))
	if bodyField == "" || len(bytes.TrimSpace(doc.Body)) == 0 {
		return payload, nil
	}

	bodyID, ok := fieldIDs[bodyField]
	if !ok {
		return content.LocalePayload{}, fmt.Errorf("markdown importer: body field %q is not part of the content type", bodyField)
	}

	html := doc.BodyHTML
	if len(html) == 0 {
		rendered, err := i.renderer.Render(doc.Body)
		if err != nil {
			return content.LocalePayload{}, fmt.Errorf("markdown importer: %s: %w", doc.FilePath, err)
		}
		html = rendered
	}
	payload.FieldValues[bodyID] = string(html)

	return payload, nil
}

func fieldsByName(ct *schema.Dto) map[string]uuid.UUID {
	out := make(map[string]uuid.UUID, len(ct.Fields))
	for _, field := range ct.Fields {
		out[strings.ToLower(field.UniqueName)] = field.ID
	}
	return out
}

// uniqueNameFor resolves the group key for a document: explicit frontmatter
// unique name, else the slugified title, else the slugified file base name.
func uniqueNameFor(doc *Document) (string, error) {
	if name := strings.TrimSpace(doc.FrontMatter.UniqueName); name != "" {
		return strings.ToLower(name), nil
	}

	source := strings.TrimSpace(doc.FrontMatter.Title)
	if source == "" {
		base := path.Base(filepathToSlash(doc.FilePath))
		source = strings.TrimSuffix(base, path.Ext(base))
	}
	if source == "" || source == "." {
		return "", ErrUniqueNameMissing
	}

	name, err := slug.Normalize(source)
	if err != nil {
		return "", fmt.Errorf("markdown importer: %s: %w", doc.FilePath, err)
	}
	return name, nil
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

func groupByUniqueName(docs []*Document) (map[string][]*Document, []string, error) {
	grouped := map[string][]*Document{}
	var order []string

	for _, doc := range docs {
		if doc == nil {
			continue
		}
		name, err := uniqueNameFor(doc)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := grouped[name]; !ok {
			order = append(order, name)
		}
		grouped[name] = append(grouped[name], doc)
	}

	sort.Strings(order)
	return grouped, order, nil
}

func sortDocuments(docs []*Document) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Language != docs[j].Language {
			return docs[i].Language < docs[j].Language
		}
		return docs[i].FilePath < docs[j].FilePath
	})
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
