package services

import (
	"context"
	"fmt"
	"strings"

	"app-builder-api/internal/apperrors"
	"app-builder-api/internal/models"
)

// AppLookup is a stored record together with its public download links
type AppLookup struct {
	Record  *models.AppRecord
	APKLink string
	AABLink string
}

// CheckApp returns the record for packageName, or nil if it was never submitted
func (s *SubmissionService) CheckApp(ctx context.Context, packageName string) (*models.AppRecord, error) {
	packageName = strings.TrimSpace(packageName)
	if packageName == "" {
		return nil, fmt.Errorf("%w: packageName is required", apperrors.ErrValidation)
	}

	storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.store.FindByPackage(storeCtx, packageName)
}

// Search finds the first app whose name or package contains query. A nil
// result means nothing matched.
func (s *SubmissionService) Search(ctx context.Context, query string) (*AppLookup, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", apperrors.ErrValidation)
	}

	storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	record, err := s.store.FindByNameOrPackage(storeCtx, query)
	if err != nil || record == nil {
		return nil, err
	}

	return &AppLookup{
		Record:  record,
		APKLink: s.files.URL(record.BuildFile),
		AABLink: s.files.URL(record.BuildAAB),
	}, nil
}
