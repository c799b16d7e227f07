package services

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"app-builder-api/internal/apperrors"
	"app-builder-api/internal/metrics"
	"app-builder-api/internal/models"
	"app-builder-api/internal/storage"
	"app-builder-api/pkg/logging"

	"github.com/go-playground/validator/v10"
)

var (
	packageNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z0-9_]+)*$`)
	validate           = validator.New()
)

// AppRecordStore is the persistence the services need
type AppRecordStore interface {
	FindByPackage(ctx context.Context, packageName string) (*models.AppRecord, error)
	FindByNameOrPackage(ctx context.Context, query string) (*models.AppRecord, error)
	Upsert(ctx context.Context, record *models.AppRecord) (*models.AppRecord, error)
	MarkPaid(ctx context.Context, packageName, buildAABPath string) (*models.AppRecord, error)
}

// FileStore keeps uploaded assets and maps stored paths to public URLs
type FileStore interface {
	SaveUpload(ctx context.Context, kind storage.AssetKind, packageName, filename string, r io.Reader) (string, error)
	Remove(rel string) error
	URL(rel string) string
}

// Dispatcher hands a message off for background delivery
type Dispatcher interface {
	Dispatch(msg Message)
}

// Upload is an optional file sent with a submission
type Upload struct {
	Filename string
	Content  io.Reader
}

// SubmitInput is the metadata and assets of one submission
type SubmitInput struct {
	Metadata models.AppRecord
	Icon     *Upload
	Splash   *Upload
}

// SubmitResult is what a successful submission returns
type SubmitResult struct {
	Record      *models.AppRecord
	DownloadURL string
}

// SubmissionService creates or refreshes app records and their test APK
type SubmissionService struct {
	store        AppRecordStore
	files        FileStore
	builder      storage.BuildArtifactGenerator
	notifier     Dispatcher
	locker       Locker
	storeTimeout time.Duration
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(store AppRecordStore, files FileStore, builder storage.BuildArtifactGenerator,
	notifier Dispatcher, locker Locker, storeTimeout time.Duration) *SubmissionService {
	return &SubmissionService{
		store:        store,
		files:        files,
		builder:      builder,
		notifier:     notifier,
		locker:       locker,
		storeTimeout: storeTimeout,
	}
}

// Submit validates the input, stores the assets, generates the APK stub and
// upserts the record. The contact is emailed in the background.
func (s *SubmissionService) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	meta := in.Metadata
	meta.PackageName = strings.TrimSpace(meta.PackageName)
	meta.ContactEmail = strings.TrimSpace(meta.ContactEmail)

	if err := validateSubmission(&meta); err != nil {
		metrics.RecordSubmission("invalid")
		return nil, err
	}

	result, err := s.submit(ctx, meta, in.Icon, in.Splash)
	if err != nil {
		metrics.RecordSubmission("error")
		return nil, err
	}
	metrics.RecordSubmission("ok")
	return result, nil
}

func (s *SubmissionService) submit(ctx context.Context, meta models.AppRecord, icon, splash *Upload) (*SubmitResult, error) {
	unlock, err := s.locker.Lock(ctx, meta.PackageName)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Only data that describes the app is taken from the client
	meta.BaseModel = models.BaseModel{}
	meta.Paid = false
	meta.BuildAAB = ""
	meta.Icon = ""
	meta.Splash = ""

	if icon != nil {
		if meta.Icon, err = s.files.SaveUpload(ctx, storage.AssetIcon, meta.PackageName, icon.Filename, icon.Content); err != nil {
			return nil, err
		}
	}
	if splash != nil {
		if meta.Splash, err = s.files.SaveUpload(ctx, storage.AssetSplash, meta.PackageName, splash.Filename, splash.Content); err != nil {
			return nil, err
		}
	}

	storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
	existing, err := s.store.FindByPackage(storeCtx, meta.PackageName)
	cancel()
	if err != nil {
		return nil, err
	}

	meta.BuildFile, err = s.builder.Generate(ctx, meta.PackageName, storage.ArtifactAPK)
	if err != nil {
		return nil, err
	}

	storeCtx, cancel = withTimeout(ctx, s.storeTimeout)
	record, err := s.store.Upsert(storeCtx, &meta)
	cancel()
	if err != nil {
		if existing == nil {
			// Nothing references the stub yet
			if rmErr := s.files.Remove(meta.BuildFile); rmErr != nil {
				logging.Warnf("Failed to remove orphaned build - package: %s, error: %v", meta.PackageName, rmErr)
			}
		}
		return nil, err
	}

	downloadURL := s.files.URL(record.BuildFile)
	s.notifier.Dispatch(APKReadyEmail(record.ContactEmail, record.AppName, record.PackageName, downloadURL))

	logging.Infof("App submitted - package: %s, created: %t", record.PackageName, existing == nil)
	return &SubmitResult{Record: record, DownloadURL: downloadURL}, nil
}

// withTimeout bounds a collaborator call; d <= 0 means no extra bound
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func validateSubmission(meta *models.AppRecord) error {
	if meta.PackageName == "" {
		return fmt.Errorf("%w: packageName is required", apperrors.ErrValidation)
	}
	if !packageNamePattern.MatchString(meta.PackageName) {
		return fmt.Errorf("%w: packageName %q is not a valid package identifier", apperrors.ErrValidation, meta.PackageName)
	}
	if meta.ContactEmail == "" {
		return fmt.Errorf("%w: contactEmail is required", apperrors.ErrValidation)
	}
	if err := validate.Var(meta.ContactEmail, "email"); err != nil {
		return fmt.Errorf("%w: contactEmail %q is not a valid address", apperrors.ErrValidation, meta.ContactEmail)
	}
	if meta.VersionCode < 0 {
		return fmt.Errorf("%w: versionCode must not be negative", apperrors.ErrValidation)
	}
	return nil
}
