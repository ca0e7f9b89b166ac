package validator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alovak/cardcheck/internal/cardcheck"
	"github.com/alovak/cardcheck/internal/cardgen"
	"github.com/alovak/cardcheck/internal/expiry"
	"github.com/alovak/cardcheck/internal/security"
	"github.com/alovak/cardcheck/validator/models"
	"github.com/google/uuid"
)

var (
	ErrEmptyBatch    = errors.New("batch is empty")
	ErrBatchTooLarge = errors.New("batch is too large")
	ErrInvalidExpiry = expiry.ErrInvalid
)

type Service struct {
	checker *cardcheck.Checker
	repo    *Repository
	hasher  security.PANHasher
	cfg     *Config
	loc     *time.Location
	now     func() time.Time
}

func NewService(repo *Repository, hasher security.PANHasher, cfg *Config) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	loc, err := cfg.Location()
	if err != nil {
		loc = time.UTC
	}
	return &Service{
		checker: cardcheck.NewChecker(cfg.CheckPolicy()),
		repo:    repo,
		hasher:  hasher,
		cfg:     cfg,
		loc:     loc,
		now:     time.Now,
	}
}

// Check validates one number. req.Expiry, when set, is read as printed on
// the card (MM/YY or MMYY).
func (s *Service) Check(ctx context.Context, req models.CheckRequest, src models.Source) (*models.CheckResult, error) {
	yymm := ""
	if req.Expiry != "" {
		var err error
		yymm, err = expiry.ParseCardFace(req.Expiry)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidExpiry, err)
		}
	}
	return s.Verify(ctx, req.Number, yymm, src)
}

// Verify validates one number with an optional expiry in YYMM, the layout
// used by ISO 8583 field 14.
func (s *Service) Verify(ctx context.Context, number, yymm string, src models.Source) (*models.CheckResult, error) {
	var expired *bool
	if yymm != "" {
		e, err := expiry.IsExpired(yymm, s.now(), s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidExpiry, err)
		}
		expired = &e
	}

	res, err := s.checker.Check(number)
	if err != nil {
		return nil, err
	}

	out, err := s.record(ctx, res, src)
	if err != nil {
		return nil, err
	}
	out.Expired = expired
	return out, nil
}

// CheckBatch validates numbers and returns results in the same order.
// Strict-mode rejections are reported per result, not as an error.
func (s *Service) CheckBatch(ctx context.Context, numbers []string, src models.Source) ([]models.CheckResult, error) {
	if len(numbers) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(numbers) > s.cfg.MaxBatch {
		return nil, fmt.Errorf("%w: %d numbers, limit is %d", ErrBatchTooLarge, len(numbers), s.cfg.MaxBatch)
	}

	outcomes := s.checker.CheckAll(ctx, numbers, s.cfg.Workers)
	results := make([]models.CheckResult, len(outcomes))
	for i, o := range outcomes {
		if o.Err != nil {
			if !errors.Is(o.Err, cardcheck.ErrMalformedInput) {
				return nil, fmt.Errorf("checking batch: %w", o.Err)
			}
			results[i] = models.CheckResult{
				Number: cardgen.MaskPAN(o.Input),
				Error:  o.Err.Error(),
			}
			continue
		}
		out, err := s.record(ctx, o.Result, src)
		if err != nil {
			return nil, err
		}
		results[i] = *out
	}
	return results, nil
}

func (s *Service) GetCheck(ctx context.Context, id string) (*models.CheckRecord, error) {
	rec, err := s.repo.GetCheck(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding check: %w", err)
	}
	return rec, nil
}

// ListChecks returns a list of recent checks, newest first.
func (s *Service) ListChecks(ctx context.Context, limit int) ([]*models.CheckRecord, error) {
	recs, err := s.repo.ListChecks(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing checks: %w", err)
	}
	return recs, nil
}

// record writes the audit entry for res and builds the caller-facing result.
func (s *Service) record(ctx context.Context, res cardcheck.Result, src models.Source) (*models.CheckResult, error) {
	hash, err := s.hasher.HashPAN(res.Number)
	if err != nil {
		return nil, fmt.Errorf("hashing pan: %w", err)
	}
	seen, err := s.repo.CountByPANHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("counting checks: %w", err)
	}

	bin, last4 := cardgen.Truncate(res.Number)
	rec := &models.CheckRecord{
		ID:        uuid.New().String(),
		PANHash:   hash,
		BIN:       bin,
		Last4:     last4,
		Length:    len(res.Number),
		Valid:     res.Valid,
		CardType:  res.Type,
		Source:    src,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.SaveCheck(ctx, rec); err != nil {
		return nil, fmt.Errorf("recording check: %w", err)
	}

	return &models.CheckResult{
		ID:       rec.ID,
		Number:   cardgen.MaskPAN(res.Number),
		Valid:    res.Valid,
		CardType: res.Type,
		Seen:     seen,
	}, nil
}
