package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/demusis/analise-conteudo-video/internal/imaging"
)

// Compile-time check that PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)

const frameColumns = `id, video_id, number, timestamp_seconds, file_name, image_path,
		category_id, note, filters, annotations, scale, created_at, updated_at`

// PostgresRepository is a pgx-backed implementation of Repository.
// Filter and annotation stacks are stored as JSONB so the editing state
// round-trips without a relational model of its own.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a frame repository on top of a pgx pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// InitSchema creates the frames table if it doesn't exist.
func (r *PostgresRepository) InitSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS frames (
			id TEXT PRIMARY KEY,
			video_id TEXT NOT NULL,
			number INTEGER NOT NULL,
			timestamp_seconds DOUBLE PRECISION NOT NULL,
			file_name TEXT NOT NULL,
			image_path TEXT NOT NULL,
			category_id TEXT NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			filters JSONB NOT NULL DEFAULT '[]',
			annotations JSONB NOT NULL DEFAULT '[]',
			scale INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_frames_video_id ON frames(video_id);
		CREATE INDEX IF NOT EXISTS idx_frames_category_id ON frames(category_id);
	`)
	if err != nil {
		return fmt.Errorf("create frames schema: %w", err)
	}
	return nil
}

// Save persists a frame, updating the editing state when the ID exists.
func (r *PostgresRepository) Save(ctx context.Context, frame *Frame) error {
	filters, annotations, err := encodeSpecs(frame)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO frames (` + frameColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
			category_id=EXCLUDED.category_id, note=EXCLUDED.note,
			filters=EXCLUDED.filters, annotations=EXCLUDED.annotations,
			scale=EXCLUDED.scale, updated_at=EXCLUDED.updated_at`

	_, err = r.pool.Exec(ctx, query,
		frame.ID, frame.VideoID, frame.Number, frame.TimestampSeconds,
		frame.FileName, frame.ImagePath, frame.CategoryID, frame.Note,
		filters, annotations, frame.Scale, frame.CreatedAt, frame.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save frame: %w", err)
	}
	return nil
}

// FindByID retrieves a frame by its ID.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*Frame, error) {
	query := `SELECT ` + frameColumns + ` FROM frames WHERE id=$1`

	frame, err := scanFrame(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFrameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find frame by id: %w", err)
	}
	return frame, nil
}

// ListByVideo returns all frames of a video ordered by capture number.
func (r *PostgresRepository) ListByVideo(ctx context.Context, videoID string) ([]*Frame, error) {
	query := `SELECT ` + frameColumns + ` FROM frames WHERE video_id=$1 ORDER BY number`

	rows, err := r.pool.Query(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	defer rows.Close()

	return collectFrames(rows)
}

// NextNumber returns one past the highest capture number the video has seen.
func (r *PostgresRepository) NextNumber(ctx context.Context, videoID string) (int, error) {
	var next int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(number), 0) + 1 FROM frames WHERE video_id=$1`,
		videoID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next frame number: %w", err)
	}
	return next, nil
}

// Delete removes a frame from storage.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM frames WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete frame: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrFrameNotFound
	}
	return nil
}

// DeleteByVideo removes all frames of a video and returns the removed records.
func (r *PostgresRepository) DeleteByVideo(ctx context.Context, videoID string) ([]*Frame, error) {
	query := `DELETE FROM frames WHERE video_id=$1 RETURNING ` + frameColumns

	rows, err := r.pool.Query(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("delete frames: %w", err)
	}
	defer rows.Close()

	return collectFrames(rows)
}

// ReassignCategory moves every frame in one category to another.
func (r *PostgresRepository) ReassignCategory(ctx context.Context, fromCategoryID, toCategoryID string) (int, error) {
	ct, err := r.pool.Exec(ctx,
		`UPDATE frames SET category_id=$2 WHERE category_id=$1`,
		fromCategoryID, toCategoryID)
	if err != nil {
		return 0, fmt.Errorf("reassign category: %w", err)
	}
	return int(ct.RowsAffected()), nil
}

func encodeSpecs(frame *Frame) (filters, annotations []byte, err error) {
	fs := frame.Filters
	if fs == nil {
		fs = []imaging.FilterSpec{}
	}
	as := frame.Annotations
	if as == nil {
		as = []imaging.AnnotationSpec{}
	}

	filters, err = json.Marshal(fs)
	if err != nil {
		return nil, nil, fmt.Errorf("encode filters: %w", err)
	}
	annotations, err = json.Marshal(as)
	if err != nil {
		return nil, nil, fmt.Errorf("encode annotations: %w", err)
	}
	return filters, annotations, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFrame(row rowScanner) (*Frame, error) {
	var (
		frame           Frame
		filtersJSON     []byte
		annotationsJSON []byte
	)
	err := row.Scan(
		&frame.ID, &frame.VideoID, &frame.Number, &frame.TimestampSeconds,
		&frame.FileName, &frame.ImagePath, &frame.CategoryID, &frame.Note,
		&filtersJSON, &annotationsJSON, &frame.Scale,
		&frame.CreatedAt, &frame.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(filtersJSON, &frame.Filters); err != nil {
		return nil, fmt.Errorf("decode filters: %w", err)
	}
	if err := json.Unmarshal(annotationsJSON, &frame.Annotations); err != nil {
		return nil, fmt.Errorf("decode annotations: %w", err)
	}
	return &frame, nil
}

func collectFrames(rows pgx.Rows) ([]*Frame, error) {
	frames := make([]*Frame, 0)
	for rows.Next() {
		frame, err := scanFrame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		frames = append(frames, frame)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate frames: %w", err)
	}
	return frames, nil
}
