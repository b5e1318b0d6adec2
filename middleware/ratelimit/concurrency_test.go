package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// blockingHandler holds its slot until release is closed.
type blockingHandler struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingHandler() *blockingHandler {
	return &blockingHandler{entered: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	w.WriteHeader(http.StatusOK)
}

func streamRequest(ctx context.Context) *http.Request {
	return httptest.NewRequest(http.MethodPost, "http://example/api/ai/chat/stream", nil).WithContext(ctx)
}

func TestConcurrencyMiddleware_RejectsWhenPoolIsFull(t *testing.T) {
	blocker := newBlockingHandler()
	h := ConcurrencyMiddleware(ConcurrencyOptions{
		Name:           "ai-chat",
		Max:            1,
		AcquireTimeout: 20 * time.Millisecond,
	})(blocker)

	firstDone := make(chan int, 1)
	go func() {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, streamRequest(context.Background()))
		firstDone <- rr.Code
	}()

	select {
	case <-blocker.entered:
	case <-time.After(time.Second):
		t.Fatal("first stream never started")
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, streamRequest(context.Background()))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while the slot is held, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON rejection, got %q", ct)
	}

	close(blocker.release)
	if code := <-firstDone; code != http.StatusOK {
		t.Fatalf("expected first stream 200, got %d", code)
	}
}

func TestConcurrencyMiddleware_SlotIsReleased(t *testing.T) {
	calls := 0
	h := ConcurrencyMiddleware(ConcurrencyOptions{Max: 1, AcquireTimeout: 10 * time.Millisecond})(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { calls++ }),
	)

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, streamRequest(context.Background()))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rr.Code)
		}
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestConcurrencyMiddleware_CustomRejectStatus(t *testing.T) {
	blocker := newBlockingHandler()
	h := ConcurrencyMiddleware(ConcurrencyOptions{
		Max:          1,
		RejectStatus: http.StatusTooManyRequests,
	})(blocker)

	go h.ServeHTTP(httptest.NewRecorder(), streamRequest(context.Background()))
	<-blocker.entered
	defer close(blocker.release)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, streamRequest(context.Background()))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
}

func TestConcurrencyMiddleware_CallerGoneWritesNothing(t *testing.T) {
	blocker := newBlockingHandler()
	h := ConcurrencyMiddleware(ConcurrencyOptions{Max: 1, AcquireTimeout: time.Second})(blocker)

	go h.ServeHTTP(httptest.NewRecorder(), streamRequest(context.Background()))
	<-blocker.entered
	defer close(blocker.release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, streamRequest(ctx))
	if rr.Body.Len() != 0 {
		t.Fatalf("expected no body for a gone caller, got %q", rr.Body.String())
	}
}

func TestConcurrencyMiddleware_DisabledWhenMaxZero(t *testing.T) {
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ })

	h := ConcurrencyMiddleware(ConcurrencyOptions{})(next)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://example/", nil))

	if calls != 1 {
		t.Fatalf("expected pass-through, got %d calls", calls)
	}
}
