package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"app-builder-api/internal/database"
	"app-builder-api/internal/storage"

	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret"

// recordingDispatcher captures messages instead of sending them
type recordingDispatcher struct {
	mu       sync.Mutex
	messages []Message
}

func (d *recordingDispatcher) Dispatch(msg Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, msg)
}

func (d *recordingDispatcher) Messages() []Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Message(nil), d.messages...)
}

// fakeGateway creates sequential orders and checks real HMAC signatures
type fakeGateway struct {
	mu       sync.Mutex
	receipts []string
	err      error
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.err != nil {
		return nil, g.err
	}
	g.receipts = append(g.receipts, receipt)
	return &Order{
		ID:       "order_" + receipt,
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifyPaymentSignature(testSecret, orderID, paymentID, signature)
}

type testEnv struct {
	root       string
	store      *database.AppRecordStore
	files      *storage.LocalStore
	dispatcher *recordingDispatcher
	gateway    *fakeGateway
	submission *SubmissionService
	payment    *PaymentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	db, err := database.OpenSQLite(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db, nil) })

	root := filepath.Join(dir, "uploads")
	files, err := storage.NewLocalStore(root, "http://localhost:8080")
	require.NoError(t, err)

	env := &testEnv{
		root:       root,
		store:      database.NewAppRecordStore(db),
		files:      files,
		dispatcher: &recordingDispatcher{},
		gateway:    &fakeGateway{},
	}

	builder := storage.NewStubGenerator(files)
	locker := NewLocalLocker()
	env.submission = NewSubmissionService(env.store, files, builder, env.dispatcher, locker, 0)
	env.payment = NewPaymentService(env.gateway, env.store, files, builder, env.dispatcher, locker, PaymentOptions{
		Amount:   699900,
		Currency: "INR",
	})
	return env
}
