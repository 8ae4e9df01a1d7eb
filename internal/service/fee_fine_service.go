package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/feeledger-backend/internal/model"
)

// FeeFineService manages the per-school fine catalog.
type FeeFineService struct {
	fines FeeFineStore
	cache FineCatalogCache
	log   zerolog.Logger
}

// NewFeeFineService creates a new FeeFineService. cache may be nil.
func NewFeeFineService(fines FeeFineStore, cache FineCatalogCache, log zerolog.Logger) *FeeFineService {
	return &FeeFineService{
		fines: fines,
		cache: cache,
		log:   log.With().Str("component", "fee_fine_service").Logger(),
	}
}

// List returns a school's fine catalog. A cache failure falls back to the
// database; a database failure is returned.
func (s *FeeFineService) List(ctx context.Context, school model.SchoolCode) ([]model.FeeFine, error) {
	if s.cache != nil {
		fines, ok, err := s.cache.Get(ctx, school)
		if err != nil {
			s.log.Warn().Err(err).Str("school_code", school.String()).Msg("fine cache read failed")
		} else if ok {
			return fines, nil
		}
	}

	fines, err := s.fines.List(ctx, school)
	if err != nil {
		s.log.Error().Err(err).Str("op", "list_fines").Str("school_code", school.String()).Msg("failed to list fee fines")
		return nil, fmt.Errorf("list fee fines: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, school, fines); err != nil {
			s.log.Warn().Err(err).Str("school_code", school.String()).Msg("fine cache write failed")
		}
	}
	return fines, nil
}

// Get returns one catalog fine.
func (s *FeeFineService) Get(ctx context.Context, school model.SchoolCode, id int64) (*model.FeeFine, error) {
	f, err := s.fines.GetByID(ctx, school, id)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

// Create validates and stores a catalog fine, then drops the cached catalog.
func (s *FeeFineService) Create(ctx context.Context, school model.SchoolCode, req model.CreateFeeFineRequest) (*model.FeeFine, error) {
	if req.Value == nil || req.Value.IsNegative() {
		return nil, invalid("value", "value must be zero or greater")
	}
	if req.FineType == model.FineTypePercentage && req.Value.GreaterThan(hundred) {
		return nil, invalid("value", "percentage must not exceed 100")
	}
	if req.MaxFineAmount != nil && req.MaxFineAmount.IsNegative() {
		return nil, invalid("max_fine_amount", "max_fine_amount must be zero or greater")
	}

	fine := &model.FeeFine{
		SchoolCode:          school,
		Name:                strings.TrimSpace(req.Name),
		FineType:            req.FineType,
		Value:               *req.Value,
		ApplicableAfterDays: req.ApplicableAfterDays,
	}
	if req.MaxFineAmount != nil {
		fine.MaxFineAmount.Decimal = *req.MaxFineAmount
		fine.MaxFineAmount.Valid = true
	}

	if err := s.fines.Create(ctx, fine); err != nil {
		s.log.Error().Err(err).Str("op", "create_fine").Str("school_code", school.String()).Msg("failed to create fee fine")
		return nil, fmt.Errorf("create fee fine: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, school); err != nil {
			s.log.Warn().Err(err).Str("school_code", school.String()).Msg("fine cache invalidation failed")
		}
	}
	return fine, nil
}
