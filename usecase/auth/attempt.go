package auth

import (
	"context"
	"sync"

	"github.com/fastygo/academy/domain"
)

// Attempt tracks a background social login.
type Attempt struct {
	Provider domain.SocialProvider

	done    chan struct{}
	once    sync.Once
	cancel  context.CancelFunc
	session *domain.Session
	err     error
}

func newAttempt(provider domain.SocialProvider, cancel context.CancelFunc) *Attempt {
	return &Attempt{
		Provider: provider,
		done:     make(chan struct{}),
		cancel:   cancel,
	}
}

// Done is closed once the attempt has an outcome.
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Result returns the outcome; it is only meaningful after Done is closed.
func (a *Attempt) Result() (*domain.Session, error) {
	select {
	case <-a.done:
		return a.session, a.err
	default:
		return nil, nil
	}
}

// Wait blocks until the attempt finishes or ctx is done.
func (a *Attempt) Wait(ctx context.Context) (*domain.Session, error) {
	select {
	case <-a.done:
		return a.session, a.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel abandons the handshake. A cancelled attempt never writes a session,
// even if the provider answers afterwards.
func (a *Attempt) Cancel() {
	a.cancel()
}

func (a *Attempt) finish(session *domain.Session, err error) {
	a.once.Do(func() {
		a.session = session
		a.err = err
		close(a.done)
	})
}
