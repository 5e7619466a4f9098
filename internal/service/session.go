package service

import (
	"context"
	"fmt"
	"regexp"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	apperrors "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/errors"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/validator"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

func (s *CatalogService) filterStore(sessionID string) error {
	if s.filters == nil {
		return apperrors.Unavailable("saved filters are not configured", nil)
	}
	if !sessionIDPattern.MatchString(sessionID) {
		return apperrors.InvalidInput("session id must be 1-128 letters, digits, '-' or '_'")
	}
	return nil
}

// SessionFilters returns the saved filter state, or the defaults.
func (s *CatalogService) SessionFilters(ctx context.Context, sessionID string) (domain.FilterState, error) {
	if err := s.filterStore(sessionID); err != nil {
		return domain.FilterState{}, err
	}
	f, err := s.filters.Get(ctx, sessionID)
	if err != nil {
		return domain.FilterState{}, fmt.Errorf("get session filters: %w", err)
	}
	return f, nil
}

// SaveSessionFilters validates and stores a session's filter state.
func (s *CatalogService) SaveSessionFilters(ctx context.Context, sessionID string, f domain.FilterState) (domain.FilterState, error) {
	if err := s.filterStore(sessionID); err != nil {
		return domain.FilterState{}, err
	}
	if err := validator.Validate(&f); err != nil {
		return domain.FilterState{}, err
	}
	f = f.Normalized()
	if err := s.filters.Save(ctx, sessionID, f); err != nil {
		return domain.FilterState{}, fmt.Errorf("save session filters: %w", err)
	}
	return f, nil
}

// ClearSessionFilters is "clear all": the session reverts to the defaults.
func (s *CatalogService) ClearSessionFilters(ctx context.Context, sessionID string) error {
	if err := s.filterStore(sessionID); err != nil {
		return err
	}
	if err := s.filters.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("clear session filters: %w", err)
	}
	return nil
}
