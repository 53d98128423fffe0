package results

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// profileWidth is the fixed dimensionality of the stored score profile.
const profileWidth = 64

// PostgresConfig holds connection details for PostgreSQL.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// VideoRecord is one evaluated video's persisted row.
type VideoRecord struct {
	GroupCount int
	VideoPath  string
	MeanScore  float64
	Frames     int
	Scores     []float64
}

// Store persists per-video evaluation rows. Store failures are logged
// by the orchestrator and never abort a run.
type Store interface {
	AddVideoResult(ctx context.Context, rec VideoRecord) error
	Close()
}

// PostgresStore manages interaction with PostgreSQL.
type PostgresStore struct {
	pool  *pgxpool.Pool
	runID uuid.UUID
}

// NewPostgresStore creates a new PostgreSQL storage connection and
// ensures the results table exists.
func NewPostgresStore(ctx context.Context, config PostgresConfig, runID uuid.UUID) (*PostgresStore, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		config.User,
		config.Password,
		config.Host,
		config.Port,
		config.DBName,
	)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{pool: pool, runID: runID}
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	// Requires the pgvector extension for the score_profile column.
	_, err := s.pool.Exec(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS video_results (
			id            BIGSERIAL PRIMARY KEY,
			run_id        UUID NOT NULL,
			group_count   INT NOT NULL,
			video_path    TEXT NOT NULL,
			mean_score    DOUBLE PRECISION NOT NULL,
			frames        INT NOT NULL,
			score_profile VECTOR(%d),
			created_at    TIMESTAMPTZ NOT NULL
		)`, profileWidth))
	if err != nil {
		return fmt.Errorf("failed to ensure results schema: %w", err)
	}
	return nil
}

// AddVideoResult inserts one evaluated video. The frame-score sequence
// is resampled to a fixed-width profile so accuracy-over-time shapes
// can be compared across videos of different lengths.
func (s *PostgresStore) AddVideoResult(ctx context.Context, rec VideoRecord) error {
	profile := Profile(rec.Scores, profileWidth)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO video_results
		(run_id, group_count, video_path, mean_score, frames, score_profile, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.runID, rec.GroupCount, rec.VideoPath, rec.MeanScore, rec.Frames,
		pgvector.NewVector(profile), time.Now())
	if err != nil {
		return fmt.Errorf("failed to store video result: %w", err)
	}
	return nil
}

// Profile linearly resamples scores to a vector of the given width.
// Empty input yields an all-zero profile. A single score (or width 1)
// fills the whole vector with that value: a one-frame video has a flat
// accuracy-over-time shape, and flat profiles of equal accuracy compare
// as identical, which is the intended reading.
func Profile(scores []float64, width int) []float32 {
	out := make([]float32, width)
	if len(scores) == 0 || width == 0 {
		return out
	}
	if len(scores) == 1 || width == 1 {
		for i := range out {
			out[i] = float32(scores[0])
		}
		return out
	}
	step := float64(len(scores)-1) / float64(width-1)
	for i := 0; i < width; i++ {
		pos := float64(i) * step
		lo := int(pos)
		hi := lo + 1
		if hi >= len(scores) {
			hi = len(scores) - 1
		}
		frac := pos - float64(lo)
		out[i] = float32(scores[lo]*(1-frac) + scores[hi]*frac)
	}
	return out
}
