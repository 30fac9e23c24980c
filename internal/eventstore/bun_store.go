package eventstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
)

// EventRecord is the relational shape of one appended envelope.
type EventRecord struct {
	bun.BaseModel `bun:"table:engine_events,alias:ev"`

	ID         int64     `bun:",pk,autoincrement" json:"id"`
	StreamKey  string    `bun:"stream_key,notnull" json:"stream_key"`
	Version    int       `bun:"version,notnull" json:"version"`
	Type       string    `bun:"event_type,notnull" json:"event_type"`
	Payload    []byte    `bun:"payload,type:jsonb,notnull" json:"payload"`
	RecordedAt time.Time `bun:"recorded_at,nullzero,default:current_timestamp" json:"recorded_at"`
}

// BunStore persists streams in an append-only bun-managed table.
type BunStore struct {
	db *bun.DB
}

// NewBunStore wraps the provided bun database.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

// CreateTables provisions the event table. Intended for embedded/sqlite
// deployments and tests; managed databases run migrations instead.
func (s *BunStore) CreateTables(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*EventRecord)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Load reads a stream in version order, honoring time-travel bounds.
func (s *BunStore) Load(ctx context.Context, streamKey string, atVersion int) ([]Envelope, error) {
	query := s.db.NewSelect().
		Model((*EventRecord)(nil)).
		Where("stream_key = ?", streamKey).
		Order("version ASC")
	if atVersion >= 0 {
		query = query.Where("version <= ?", atVersion)
	}

	var records []EventRecord
	if err := query.Scan(ctx, &records); err != nil {
		return nil, err
	}

	out := make([]Envelope, 0, len(records))
	for _, rec := range records {
		out = append(out, Envelope{
			StreamKey:  rec.StreamKey,
			Version:    rec.Version,
			Type:       rec.Type,
			Payload:    rec.Payload,
			RecordedAt: rec.RecordedAt,
		})
	}
	return out, nil
}

// Append inserts envelopes transactionally after re-checking the stream head.
func (s *BunStore) Append(ctx context.Context, streamKey string, expectedVersion int, envelopes []Envelope) error {
	if len(envelopes) == 0 {
		return nil
	}

	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var head int
		err := tx.NewSelect().
			Model((*EventRecord)(nil)).
			ColumnExpr("coalesce(max(version), 0)").
			Where("stream_key = ?", streamKey).
			Scan(ctx, &head)
		if err != nil {
			return err
		}
		if head != expectedVersion {
			return &VersionConflictError{
				StreamKey: streamKey,
				Expected:  expectedVersion,
				Actual:    head,
			}
		}

		records := make([]EventRecord, 0, len(envelopes))
		for _, env := range envelopes {
			records = append(records, EventRecord{
				StreamKey:  env.StreamKey,
				Version:    env.Version,
				Type:       env.Type,
				Payload:    env.Payload,
				RecordedAt: env.RecordedAt,
			})
		}
		_, err = tx.NewInsert().Model(&records).Exec(ctx)
		return err
	})
}
