package validator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/alovak/cardcheck/internal/cardcheck"
	"github.com/alovak/cardcheck/validator/models"
	"github.com/jackc/pgconn"
	"github.com/lib/pq"
)

var ErrNotFound = fmt.Errorf("not found")

var ErrConflict = fmt.Errorf("conflict")

// memoryLimit caps the in-memory audit trail; the oldest records go first.
const memoryLimit = 10_000

const defaultListLimit = 50

// Repository keeps the audit trail of checks, in memory or in Postgres.
type Repository struct {
	mu     sync.RWMutex
	checks []*models.CheckRecord
	byID   map[string]*models.CheckRecord
	limit  int
	db     *sql.DB
}

func NewRepository() *Repository {
	return &Repository{
		checks: make([]*models.CheckRecord, 0),
		byID:   make(map[string]*models.CheckRecord),
		limit:  memoryLimit,
	}
}

// NewPGRepository constructs a db-backed repository.
func NewPGRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) SaveCheck(ctx context.Context, rec *models.CheckRecord) error {
	if r.db == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.byID[rec.ID]; ok {
			return fmt.Errorf("check %s exists: %w", rec.ID, ErrConflict)
		}
		r.checks = append(r.checks, rec)
		r.byID[rec.ID] = rec
		if over := len(r.checks) - r.limit; over > 0 {
			for _, old := range r.checks[:over] {
				delete(r.byID, old.ID)
			}
			r.checks = append(r.checks[:0:0], r.checks[over:]...)
		}
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO cardcheck.checks(check_id, pan_hash, bin, last4, length, valid, card_type, source, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    `, rec.ID, rec.PANHash, rec.BIN, rec.Last4, rec.Length, rec.Valid, rec.CardType.String(), string(rec.Source), rec.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("check %s exists: %w", rec.ID, ErrConflict)
	}
	return err
}

func (r *Repository) GetCheck(ctx context.Context, id string) (*models.CheckRecord, error) {
	if r.db == nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		rec, ok := r.byID[id]
		if !ok {
			return nil, ErrNotFound
		}
		return rec, nil
	}
	row := r.db.QueryRowContext(ctx, `
        SELECT check_id, pan_hash, bin, last4, length, valid, card_type, source, created_at
          FROM cardcheck.checks WHERE check_id=$1
    `, id)
	rec, err := scanCheck(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// ListChecks returns up to limit records, newest first.
func (r *Repository) ListChecks(ctx context.Context, limit int) ([]*models.CheckRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if r.db == nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		out := make([]*models.CheckRecord, 0, limit)
		for i := len(r.checks) - 1; i >= 0 && len(out) < limit; i-- {
			out = append(out, r.checks[i])
		}
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, `
        SELECT check_id, pan_hash, bin, last4, length, valid, card_type, source, created_at
          FROM cardcheck.checks ORDER BY created_at DESC LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.CheckRecord
	for rows.Next() {
		rec, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountByPANHash reports how many checks were recorded for the same number.
func (r *Repository) CountByPANHash(ctx context.Context, hash []byte) (int, error) {
	if r.db == nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		n := 0
		for _, rec := range r.checks {
			if string(rec.PANHash) == string(hash) {
				n++
			}
		}
		return n, nil
	}
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM cardcheck.checks WHERE pan_hash=$1`, hash).Scan(&n)
	return n, err
}

// Ping returns DB readiness
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	return r.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCheck(s scanner) (*models.CheckRecord, error) {
	var rec models.CheckRecord
	var cardType, source string
	if err := s.Scan(&rec.ID, &rec.PANHash, &rec.BIN, &rec.Last4, &rec.Length, &rec.Valid, &cardType, &source, &rec.CreatedAt); err != nil {
		return nil, err
	}
	t, err := cardcheck.ParseType(cardType)
	if err != nil {
		return nil, fmt.Errorf("scanning check %s: %w", rec.ID, err)
	}
	rec.CardType = t
	rec.Source = models.Source(source)
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	var pe *pq.Error
	if errors.As(err, &pe) && pe.Code == "23505" {
		return true
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" {
		return true
	}
	return false
}
