package services

import (
	"context"
	"sync"
	"time"

	"app-builder-api/internal/metrics"
	"app-builder-api/pkg/logging"
)

// DefaultRetryDelays is the wait between attempts: 1s, 5s, 30s (4 attempts total)
var DefaultRetryDelays = []time.Duration{1 * time.Second, 5 * time.Second, 30 * time.Second}

const sendTimeout = 15 * time.Second

// Notifier sends email in the background. Dispatch never blocks the caller
// and a failed delivery is only reported to OnError.
type Notifier struct {
	mailer      Mailer
	retryDelays []time.Duration

	// OnError observes messages that could not be delivered after all
	// attempts. Defaults to logging.
	OnError func(msg Message, err error)

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
	stop   chan struct{}
}

// NewNotifier creates a notifier. A nil retryDelays means a single attempt.
func NewNotifier(mailer Mailer, retryDelays []time.Duration) *Notifier {
	return &Notifier{
		mailer:      mailer,
		retryDelays: retryDelays,
		OnError: func(msg Message, err error) {
			logging.Errorf("Email notification failed - to: %s, subject: %s, error: %v", msg.To, msg.Subject, err)
		},
		stop: make(chan struct{}),
	}
}

// Dispatch queues msg for delivery on its own goroutine
func (n *Notifier) Dispatch(msg Message) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		logging.Warnf("Notifier closed, dropping email - to: %s", msg.To)
		return
	}
	n.wg.Add(1)
	n.mu.Unlock()

	go func() {
		defer n.wg.Done()
		n.sendWithRetry(msg)
	}()
}

// Close stops accepting messages and waits for in-flight sends until ctx is
// done. Pending retries are abandoned once ctx expires.
func (n *Notifier) Close(ctx context.Context) error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
	}
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		n.mu.Lock()
		select {
		case <-n.stop:
		default:
			close(n.stop)
		}
		n.mu.Unlock()
		return ctx.Err()
	}
}

// sendWithRetry sends msg, retrying on the configured schedule
func (n *Notifier) sendWithRetry(msg Message) {
	maxAttempts := len(n.retryDelays) + 1
	var err error

retry:
	for attempt := 0; attempt < maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err = n.mailer.Send(ctx, msg)
		cancel()

		if err == nil {
			logging.Infof("Email notification sent - to: %s, attempt: %d", msg.To, attempt+1)
			metrics.RecordNotification("sent")
			return
		}

		logging.Warnf("Email notification attempt failed - to: %s, attempt: %d, error: %v", msg.To, attempt+1, err)

		// If not the last attempt, wait before retry
		if attempt < maxAttempts-1 {
			select {
			case <-time.After(n.retryDelays[attempt]):
			case <-n.stop:
				break retry
			}
		}
	}

	metrics.RecordNotification("failed")
	if n.OnError != nil {
		n.OnError(msg, err)
	}
}
