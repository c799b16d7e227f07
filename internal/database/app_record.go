package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"app-builder-api/internal/apperrors"
	"app-builder-api/internal/models"
	"app-builder-api/pkg/logging"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AppRecordStore persists app submissions keyed by package name
type AppRecordStore struct {
	db *gorm.DB
}

// NewAppRecordStore creates a new app record store
func NewAppRecordStore(db *gorm.DB) *AppRecordStore {
	return &AppRecordStore{db: db}
}

// FindByPackage returns the record for packageName, or nil when none exists
func (s *AppRecordStore) FindByPackage(ctx context.Context, packageName string) (*models.AppRecord, error) {
	var record models.AppRecord
	err := s.db.WithContext(ctx).Where("package_name = ?", packageName).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: find %s: %v", apperrors.ErrStorage, packageName, err)
	}
	return &record, nil
}

// FindByNameOrPackage returns the first record, in insertion order, whose app
// name or package name contains query ignoring case. nil means no match.
func (s *AppRecordStore) FindByNameOrPackage(ctx context.Context, query string) (*models.AppRecord, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	var record models.AppRecord
	err := s.db.WithContext(ctx).
		Where(`LOWER(app_name) LIKE ? ESCAPE '\' OR LOWER(package_name) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("id ASC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: search %q: %v", apperrors.ErrStorage, query, err)
	}
	return &record, nil
}

// Upsert creates the record for in.PackageName or merges the non-empty
// fields of in into the existing one. Paid and BuildAAB are never written
// here. The row is locked for the duration of the merge where the dialect
// supports it.
func (s *AppRecordStore) Upsert(ctx context.Context, in *models.AppRecord) (*models.AppRecord, error) {
	var saved models.AppRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.AppRecord
		err := lockForUpdate(tx).
			Where("package_name = ?", in.PackageName).
			First(&existing).Error

		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			// Create new record
			fresh := *in
			fresh.BaseModel = models.BaseModel{}
			fresh.Paid = false
			fresh.BuildAAB = ""
			if err := tx.Create(&fresh).Error; err != nil {
				return err
			}
			logging.Infof("App record created - package: %s", fresh.PackageName)
			saved = fresh
			return nil
		}

		existing.MergeFrom(in)
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		logging.Infof("App record updated - package: %s", existing.PackageName)
		saved = existing
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: upsert %s: %v", apperrors.ErrStorage, in.PackageName, err)
	}

	return &saved, nil
}

// MarkPaid flips the paid flag and records the AAB path. Unknown packages
// yield apperrors.ErrNotFound.
func (s *AppRecordStore) MarkPaid(ctx context.Context, packageName, buildAABPath string) (*models.AppRecord, error) {
	var record models.AppRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("package_name = ?", packageName).First(&record).Error; err != nil {
			return err
		}

		record.Paid = true
		record.BuildAAB = buildAABPath
		return tx.Save(&record).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no app submitted for package %s", apperrors.ErrNotFound, packageName)
		}
		return nil, fmt.Errorf("%w: mark paid %s: %v", apperrors.ErrStorage, packageName, err)
	}

	logging.Infof("App record marked paid - package: %s", packageName)
	return &record, nil
}

// Count returns the number of stored records
func (s *AppRecordStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.AppRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: count: %v", apperrors.ErrStorage, err)
	}
	return count, nil
}

// lockForUpdate adds SELECT ... FOR UPDATE on dialects that support it.
// SQLite serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
