package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
)

// TxFunc is executed within a Firestore transaction.
type TxFunc func(ctx context.Context, tx *firestore.Transaction) error

// TxOption customises a single transaction run.
type TxOption func(*txSettings)

type txSettings struct {
	maxAttempts int
	timeout     time.Duration
}

func defaultTxSettings() txSettings {
	return txSettings{maxAttempts: 5, timeout: 15 * time.Second}
}

// WithTxAttempts caps how often Firestore retries the transaction on
// contention before giving up.
func WithTxAttempts(attempts int) TxOption {
	return func(s *txSettings) {
		if attempts > 0 {
			s.maxAttempts = attempts
		}
	}
}

// WithTxTimeout bounds the total wall time of the transaction, retries
// included. An existing tighter context deadline wins.
func WithTxTimeout(timeout time.Duration) TxOption {
	return func(s *txSettings) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// RunTransaction executes fn inside a serializable Firestore transaction.
func RunTransaction(ctx context.Context, client *firestore.Client, fn TxFunc, opts ...TxOption) error {
	if client == nil {
		return WrapError("transaction", errors.New("firestore: client is nil"))
	}
	if fn == nil {
		return WrapError("transaction", errors.New("firestore: transaction function is nil"))
	}

	settings := defaultTxSettings()
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}

	txCtx, cancel := boundedContext(ctx, settings.timeout)
	defer cancel()

	err := client.RunTransaction(txCtx, fn, firestore.MaxAttempts(settings.maxAttempts))
	return WrapError("transaction", err)
}

// boundedContext applies the timeout unless the caller's deadline is already
// tighter. The returned cancel is always safe to call.
func boundedContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
