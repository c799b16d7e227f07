package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app-builder-api/internal/apperrors"
	"app-builder-api/internal/metrics"
	"app-builder-api/internal/storage"
	"app-builder-api/pkg/logging"

	"github.com/google/uuid"
)

// PaymentOptions configures the fixed price and collaborator timeouts
type PaymentOptions struct {
	Amount         int64
	Currency       string
	GatewayTimeout time.Duration
	StoreTimeout   time.Duration
}

// VerifyInput is the checkout confirmation sent by the client
type VerifyInput struct {
	PackageName string
	OrderID     string
	PaymentID   string
	Signature   string
}

// VerifyResult is what a verified payment returns
type VerifyResult struct {
	DownloadAABURL string
}

// PaymentService creates gateway orders and fulfils verified payments
type PaymentService struct {
	gateway  PaymentGateway
	store    AppRecordStore
	files    FileStore
	builder  storage.BuildArtifactGenerator
	notifier Dispatcher
	locker   Locker
	opts     PaymentOptions

	newReceipt func() string
}

// NewPaymentService creates a new payment service
func NewPaymentService(gateway PaymentGateway, store AppRecordStore, files FileStore, builder storage.BuildArtifactGenerator,
	notifier Dispatcher, locker Locker, opts PaymentOptions) *PaymentService {
	return &PaymentService{
		gateway:    gateway,
		store:      store,
		files:      files,
		builder:    builder,
		notifier:   notifier,
		locker:     locker,
		opts:       opts,
		newReceipt: newReceipt,
	}
}

// CreateOrder creates a gateway order for the fixed build price
func (s *PaymentService) CreateOrder(ctx context.Context) (*Order, error) {
	receipt := s.newReceipt()

	gwCtx, cancel := withTimeout(ctx, s.opts.GatewayTimeout)
	defer cancel()

	order, err := s.gateway.CreateOrder(gwCtx, s.opts.Amount, s.opts.Currency, receipt)
	if err != nil {
		metrics.RecordPayment("order", "error")
		logging.Errorf("Failed to create payment order - receipt: %s, error: %v", receipt, err)
		return nil, err
	}

	metrics.RecordPayment("order", "ok")
	logging.Infof("Payment order created - order_id: %s, receipt: %s", order.ID, receipt)
	return order, nil
}

// VerifyAndFulfill authenticates the payment, generates the AAB and marks
// the app paid. Nothing is written unless the signature matches.
func (s *PaymentService) VerifyAndFulfill(ctx context.Context, in VerifyInput) (*VerifyResult, error) {
	in.PackageName = strings.TrimSpace(in.PackageName)

	result, err := s.verifyAndFulfill(ctx, in)
	if err != nil {
		metrics.RecordPayment("verify", resultLabel(err))
		return nil, err
	}
	metrics.RecordPayment("verify", "ok")
	return result, nil
}

func (s *PaymentService) verifyAndFulfill(ctx context.Context, in VerifyInput) (*VerifyResult, error) {
	if in.PackageName == "" {
		return nil, fmt.Errorf("%w: packageName is required", apperrors.ErrValidation)
	}
	if !packageNamePattern.MatchString(in.PackageName) {
		return nil, fmt.Errorf("%w: packageName %q is not a valid package identifier", apperrors.ErrValidation, in.PackageName)
	}
	if in.OrderID == "" || in.PaymentID == "" || in.Signature == "" {
		return nil, fmt.Errorf("%w: razorpay_order_id, razorpay_payment_id and razorpay_signature are required", apperrors.ErrValidation)
	}

	if !s.gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		logging.Warnf("Payment signature mismatch - package: %s, order_id: %s, payment_id: %s",
			in.PackageName, in.OrderID, in.PaymentID)
		return nil, fmt.Errorf("%w: invalid signature for order %s", apperrors.ErrSignatureMismatch, in.OrderID)
	}

	unlock, err := s.locker.Lock(ctx, in.PackageName)
	if err != nil {
		return nil, err
	}
	defer unlock()

	storeCtx, cancel := withTimeout(ctx, s.opts.StoreTimeout)
	existing, err := s.store.FindByPackage(storeCtx, in.PackageName)
	cancel()
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: no app submitted for package %s", apperrors.ErrNotFound, in.PackageName)
	}

	aabPath, err := s.builder.Generate(ctx, in.PackageName, storage.ArtifactAAB)
	if err != nil {
		return nil, err
	}

	storeCtx, cancel = withTimeout(ctx, s.opts.StoreTimeout)
	record, err := s.store.MarkPaid(storeCtx, in.PackageName, aabPath)
	cancel()
	if err != nil {
		return nil, err
	}

	downloadURL := s.files.URL(record.BuildAAB)
	s.notifier.Dispatch(AABReadyEmail(record.ContactEmail, record.AppName, record.PackageName, downloadURL))

	logging.Infof("Payment verified - package: %s, order_id: %s, payment_id: %s, first_payment: %t",
		in.PackageName, in.OrderID, in.PaymentID, !existing.Paid)
	return &VerifyResult{DownloadAABURL: downloadURL}, nil
}

// newReceipt returns rcpt_<unix millis>_<8 hex>. The random suffix keeps
// receipts unique when two orders are created in the same millisecond.
func newReceipt() string {
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("rcpt_%d_%s", time.Now().UnixMilli(), nonce)
}

func resultLabel(err error) string {
	switch apperrors.HTTPStatus(err) {
	case http.StatusBadRequest:
		return "rejected"
	case http.StatusNotFound:
		return "not_found"
	default:
		return "error"
	}
}
