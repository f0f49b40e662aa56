package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultWriteTimeout = 3 * time.Second

// ExtractionRecord is one audit row per finished OCR call.
type ExtractionRecord struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	ImageSHA256  string
	ImageBytes   int
	Engine       string
	Outcome      string // text | empty | error
	ProcessingMS int64
	TextLength   int
	Error        string
}

type ExtractionRepo struct {
	DB           *sql.DB
	WriteTimeout time.Duration
}

func NewExtractionRepo(db *sql.DB) *ExtractionRepo {
	return &ExtractionRepo{DB: db, WriteTimeout: defaultWriteTimeout}
}

const extractionsSchema = `
create table if not exists ocr_extractions (
    id             uuid primary key,
    created_at     timestamptz not null default now(),
    image_sha256   text not null,
    image_bytes    integer not null,
    engine         text not null,
    outcome        text not null,
    processing_ms  bigint not null,
    text_length    integer not null default 0,
    error          text
);
create index if not exists ocr_extractions_image_sha256_idx on ocr_extractions (image_sha256);`

func (r *ExtractionRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, extractionsSchema); err != nil {
		return fmt.Errorf("ensure ocr_extractions: %w", err)
	}
	return nil
}

// Record inserts rec. It is detached from ctx cancellation so a client that
// hangs up right after the response still gets its row written.
func (r *ExtractionRepo) Record(ctx context.Context, rec ExtractionRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	timeout := r.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	const q = `
insert into ocr_extractions
    (id, created_at, image_sha256, image_bytes, engine, outcome, processing_ms, text_length, error)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.ExecContext(ctx, q,
		rec.ID, rec.CreatedAt, rec.ImageSHA256, rec.ImageBytes, rec.Engine,
		rec.Outcome, rec.ProcessingMS, rec.TextLength, nullIfEmpty(rec.Error),
	)
	if err != nil {
		return fmt.Errorf("insert extraction: %w", err)
	}
	return nil
}

// ByImageHash returns the newest records for one image, newest first.
func (r *ExtractionRepo) ByImageHash(ctx context.Context, imageHash string, limit int) ([]ExtractionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
select id, created_at, image_sha256, image_bytes, engine, outcome, processing_ms, text_length, coalesce(error, '')
from ocr_extractions
where image_sha256 = $1
order by created_at desc
limit $2`
	rows, err := r.DB.QueryContext(ctx, q, imageHash, limit)
	if err != nil {
		return nil, fmt.Errorf("query extractions: %w", err)
	}
	defer rows.Close()

	var out []ExtractionRecord
	for rows.Next() {
		var rec ExtractionRecord
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.ImageSHA256, &rec.ImageBytes, &rec.Engine,
			&rec.Outcome, &rec.ProcessingMS, &rec.TextLength, &rec.Error); err != nil {
			return nil, fmt.Errorf("scan extraction: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
