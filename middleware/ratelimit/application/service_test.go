package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"vibecoding-gateway/middleware/ratelimit/domain"
)

type fakeStore struct {
	usage domain.Usage
	taken bool
	err   error

	gotMax    int
	gotWindow time.Duration
}

func (s *fakeStore) Take(_ context.Context, _ domain.Key, window time.Duration, max int) (domain.Usage, bool, error) {
	s.gotMax = max
	s.gotWindow = window
	return s.usage, s.taken, s.err
}

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return t0 }

func TestService_Check_AllowsWhenNoStore(t *testing.T) {
	svc := Service{}
	dec, err := svc.Check(context.Background(), "k", time.Minute, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	if dec.RetryAfter != 0 {
		t.Fatalf("expected RetryAfter=0 when allowed, got %s", dec.RetryAfter)
	}
}

func TestService_Check_RemainingFromCount(t *testing.T) {
	store := &fakeStore{usage: domain.Usage{Count: 1, ResetAt: t0.Add(time.Minute)}, taken: true}
	svc := Service{Store: store, Now: fixedNow}

	dec, err := svc.Check(context.Background(), "k", time.Minute, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Allowed || dec.Remaining != 1 || dec.Limit != 2 {
		t.Fatalf("expected allowed with remaining=1 limit=2, got %+v", dec)
	}
	if !dec.ResetAt.Equal(t0.Add(time.Minute)) {
		t.Fatalf("unexpected ResetAt %s", dec.ResetAt)
	}
}

func TestService_Check_DeniedRoundsRetryAfterUp(t *testing.T) {
	store := &fakeStore{usage: domain.Usage{Count: 2, ResetAt: t0.Add(2500 * time.Millisecond)}}
	svc := Service{Store: store, Now: fixedNow}

	dec, err := svc.Check(context.Background(), "k", time.Minute, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Allowed {
		t.Fatalf("expected blocked")
	}
	if dec.Remaining != 0 {
		t.Fatalf("expected remaining=0, got %d", dec.Remaining)
	}
	if dec.RetryAfter != 3*time.Second {
		t.Fatalf("expected RetryAfter=3s (ceil of 2.5s), got %s", dec.RetryAfter)
	}
	if !errors.Is(dec.Reason, domain.ErrRateLimitExceeded) {
		t.Fatalf("expected ErrRateLimitExceeded reason, got %v", dec.Reason)
	}
}

func TestService_Check_PropagatesStoreError(t *testing.T) {
	boom := errors.New("redis down")
	svc := Service{Store: &fakeStore{err: boom}}

	if _, err := svc.Check(context.Background(), "k", time.Minute, 1); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestService_Decide_UsesPremiumCeiling(t *testing.T) {
	policy := domain.Policy{Name: "ai-chat", Window: time.Minute, Max: 10, PremiumMax: 50, PremiumEligible: true}

	store := &fakeStore{taken: true}
	svc := Service{Store: store, Now: fixedNow}

	if _, err := svc.Decide(context.Background(), "k", policy, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.gotMax != 50 {
		t.Fatalf("expected premium ceiling 50, got %d", store.gotMax)
	}
	if store.gotWindow != time.Minute {
		t.Fatalf("expected policy window, got %s", store.gotWindow)
	}

	if _, err := svc.Decide(context.Background(), "k", policy, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.gotMax != 10 {
		t.Fatalf("expected free ceiling 10, got %d", store.gotMax)
	}
}

func TestService_Decide_IneligiblePolicyIgnoresPremium(t *testing.T) {
	policy := domain.Policy{Name: "auth", Window: 15 * time.Minute, Max: 5, PremiumMax: 500}

	store := &fakeStore{taken: true}
	svc := Service{Store: store, Now: fixedNow}

	if _, err := svc.Decide(context.Background(), "k", policy, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.gotMax != 5 {
		t.Fatalf("auth policy must not loosen under premium, got ceiling %d", store.gotMax)
	}
}
