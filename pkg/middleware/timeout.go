package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	apperrors "github.com/Lala-Rental/lala-rental-backend/pkg/errors"
	httputil "github.com/Lala-Rental/lala-rental-backend/pkg/http"
)

// TimeoutBudget is the time a request may take. Multipart uploads stream
// images to storage and get the longer Upload budget.
type TimeoutBudget struct {
	Default time.Duration
	Upload  time.Duration
}

func (b TimeoutBudget) For(r *http.Request) time.Duration {
	if b.Upload > b.Default && isUpload(r) {
		return b.Upload
	}
	return b.Default
}

func isUpload(r *http.Request) bool {
	return r.Method == http.MethodPost && extractContentType(r.Header.Get("Content-Type")) == ContentTypeMultipart
}

// deadlineWriter swallows whatever the handler writes once the budget ran out.
type deadlineWriter struct {
	http.ResponseWriter
	mu      sync.Mutex
	expired bool
	started bool
}

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired || dw.started {
		return
	}
	dw.started = true
	dw.ResponseWriter.WriteHeader(code)
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired {
		return 0, http.ErrHandlerTimeout
	}
	if !dw.started {
		dw.started = true
		dw.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return dw.ResponseWriter.Write(b)
}

// expire marks the writer dead and reports whether the handler had not
// responded yet.
func (dw *deadlineWriter) expire() bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	dw.expired = true
	if dw.started {
		return false
	}
	dw.started = true
	return true
}

// RequestTimeout cancels the request context once its budget is spent and
// answers 504 if the handler has not written anything by then. Upload
// requests also get their connection deadlines pushed out, since the
// server-wide read and write timeouts are sized for JSON calls.
func RequestTimeout(budget TimeoutBudget) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			timeout := budget.For(r)
			if timeout > budget.Default {
				rc := http.NewResponseController(w)
				deadline := time.Now().Add(timeout + time.Second)
				_ = rc.SetReadDeadline(deadline)
				_ = rc.SetWriteDeadline(deadline)
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			r = r.WithContext(ctx)

			dw := &deadlineWriter{ResponseWriter: w}
			done := make(chan struct{})
			panicCh := make(chan any, 1)
			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicCh <- p
					}
				}()
				next.ServeHTTP(dw, r)
				close(done)
			}()

			select {
			case p := <-panicCh:
				panic(p)
			case <-done:
			case <-ctx.Done():
				if dw.expire() {
					_ = httputil.WriteError(w, apperrors.Timeout("Request timeout"))
				}
			}
		})
	}
}
