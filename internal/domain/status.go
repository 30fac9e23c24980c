package domain

// PublishStatus captures the freshness of a published locale slot relative to
// its most recent edit. A slot with no status has never been published (or
// was unpublished).
type PublishStatus string

const (
	// PublishStatusLatest marks a slot that is published and unchanged since.
	PublishStatusLatest PublishStatus = "latest"
	// PublishStatusPublished marks a slot that is still publicly visible but
	// has been edited since its last publish.
	PublishStatusPublished PublishStatus = "published"
)
