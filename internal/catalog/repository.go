package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Repository interface {
	GetBin(ctx context.Context, id string) (*Bin, error)
	FindBin(ctx context.Context, parentID, name string) (*Bin, error)
	CreateBin(ctx context.Context, bin *Bin) error
	ListBins(ctx context.Context) ([]*Bin, error)

	CreateClip(ctx context.Context, clip *Clip) error
	GetClip(ctx context.Context, id string) (*Clip, error)
	GetClipByPath(ctx context.Context, path string) (*Clip, error)
	ListClips(ctx context.Context) ([]*Clip, error)
	MoveClips(ctx context.Context, ids []string, binID string) error
	CountClips(ctx context.Context) (int, error)

	GetProperty(ctx context.Context, clipID, name string) (string, error)
	SetProperty(ctx context.Context, clipID, name, value string) error
	ListProperties(ctx context.Context, clipID string) (map[string]string, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error

	CreateRun(ctx context.Context, run *Run) error
	UpdateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetBin(ctx context.Context, id string) (*Bin, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, parent_id, created_at FROM bins WHERE id = ?
	`, id)
	return scanBin(row)
}

func (r *SQLiteRepository) FindBin(ctx context.Context, parentID, name string) (*Bin, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, parent_id, created_at FROM bins WHERE parent_id = ? AND name = ?
	`, parentID, name)
	return scanBin(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBin(row rowScanner) (*Bin, error) {
	var b Bin
	var parentID sql.NullString
	var createdAt string

	err := row.Scan(&b.ID, &b.Name, &parentID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.ParentID = parentID.String
	b.CreatedAt = parseTime(createdAt)
	return &b, nil
}

func (r *SQLiteRepository) CreateBin(ctx context.Context, b *Bin) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bins (id, name, parent_id, created_at) VALUES (?, ?, ?, ?)
	`, b.ID, b.Name, nullString(b.ParentID), formatTime(b.CreatedAt))
	return err
}

func (r *SQLiteRepository) ListBins(ctx context.Context) ([]*Bin, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, parent_id, created_at FROM bins ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bins []*Bin
	for rows.Next() {
		b, err := scanBin(rows)
		if err != nil {
			return nil, err
		}
		bins = append(bins, b)
	}
	return bins, rows.Err()
}

func (r *SQLiteRepository) CreateClip(ctx context.Context, c *Clip) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clips (id, name, bin_id, path, created_at) VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.BinID, c.Path, formatTime(c.CreatedAt))
	return err
}

func (r *SQLiteRepository) GetClip(ctx context.Context, id string) (*Clip, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, bin_id, path, created_at FROM clips WHERE id = ?
	`, id)
	return scanClip(row)
}

func (r *SQLiteRepository) GetClipByPath(ctx context.Context, path string) (*Clip, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, bin_id, path, created_at FROM clips WHERE path = ?
	`, path)
	return scanClip(row)
}

func scanClip(row rowScanner) (*Clip, error) {
	var c Clip
	var createdAt string

	err := row.Scan(&c.ID, &c.Name, &c.BinID, &c.Path, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.CreatedAt = parseTime(createdAt)
	return &c, nil
}

func (r *SQLiteRepository) ListClips(ctx context.Context) ([]*Clip, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, bin_id, path, created_at FROM clips ORDER BY name, path
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clips []*Clip
	for rows.Next() {
		c, err := scanClip(rows)
		if err != nil {
			return nil, err
		}
		clips = append(clips, c)
	}
	return clips, rows.Err()
}

func (r *SQLiteRepository) MoveClips(ctx context.Context, ids []string, binID string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, id := range ids {
		res, err := tx.ExecContext(ctx, "UPDATE clips SET bin_id = ? WHERE id = ?", binID, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("move clip %s: no such clip", id)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) CountClips(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clips").Scan(&count)
	return count, err
}

// GetProperty returns "" for a property that was never set.
func (r *SQLiteRepository) GetProperty(ctx context.Context, clipID, name string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `
		SELECT value FROM clip_properties WHERE clip_id = ? AND name = ?
	`, clipID, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetProperty(ctx context.Context, clipID, name, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clip_properties (clip_id, name, value) VALUES (?, ?, ?)
		ON CONFLICT(clip_id, name) DO UPDATE SET value = excluded.value
	`, clipID, name, value)
	return err
}

func (r *SQLiteRepository) ListProperties(ctx context.Context, clipID string) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, value FROM clip_properties WHERE clip_id = ?
	`, clipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	props := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		props[name] = value
	}
	return props, rows.Err()
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (r *SQLiteRepository) CreateRun(ctx context.Context, run *Run) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (id, operation, status, dry_run, stats, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Operation, run.Status, boolToInt(run.DryRun), nullString(run.Stats), nullString(run.Error),
		formatTime(run.CreatedAt), formatTime(run.UpdatedAt))
	return err
}

func (r *SQLiteRepository) UpdateRun(ctx context.Context, run *Run) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, stats = ?, error = ?, updated_at = ? WHERE id = ?
	`, run.Status, nullString(run.Stats), nullString(run.Error), formatTime(run.UpdatedAt), run.ID)
	return err
}

func (r *SQLiteRepository) GetRun(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, operation, status, dry_run, stats, error, created_at, updated_at
		FROM runs WHERE id = ?
	`, id)
	return scanRun(row)
}

func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, operation, status, dry_run, stats, error, created_at, updated_at
		FROM runs ORDER BY created_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var dryRun int
	var stats, errMsg sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&run.ID, &run.Operation, &run.Status, &dryRun, &stats, &errMsg, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.DryRun = dryRun == 1
	run.Stats = stats.String
	run.Error = errMsg.String
	run.CreatedAt = parseTime(createdAt)
	run.UpdatedAt = parseTime(updatedAt)
	return &run, nil
}

// storedTimeLayout is fixed-width so stored timestamps sort as text.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

// parseTime accepts RFC 3339 and SQLite's datetime('now') layout.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	t, _ := time.Parse("2006-01-02 15:04:05", strings.TrimSpace(s))
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
