package checkout_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/checkout/pkg/billing"
	"github.com/dmitrymomot/checkout/pkg/plan"
	"github.com/dmitrymomot/checkout/pkg/retry"
	"github.com/dmitrymomot/checkout/pkg/users"
	"github.com/dmitrymomot/checkout/svc/checkout"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) CreateSession(ctx context.Context, p billing.SessionParams) (*billing.Session, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Session), args.Error(1)
}

type mockReader struct {
	mock.Mock
}

func (m *mockReader) FindOne(ctx context.Context, f users.Filter) (*users.Record, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.Record), args.Error(1)
}

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) Update(ctx context.Context, f users.Filter, p users.Patch) error {
	return m.Called(ctx, f, p).Error(0)
}

type mockRepairingWriter struct {
	mockWriter
}

func (m *mockRepairingWriter) RepairPlanType(ctx context.Context, userID, planType string) error {
	return m.Called(ctx, userID, planType).Error(0)
}

type mockService struct {
	mock.Mock
}

func (m *mockService) CreateCheckout(ctx context.Context, req plan.Request) (*checkout.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Result), args.Error(1)
}

// sleepRecorder records requested backoff delays without sleeping.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func (s *sleepRecorder) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

func testPolicy(sleep retry.SleepFunc) retry.Policy {
	p := retry.DefaultPolicy()
	p.Sleep = sleep
	return p
}

// countingMetrics records calls for assertions.
type countingMetrics struct {
	mu        sync.Mutex
	results   []string
	sessions  int
	attempts  map[string]int
	exhausted int
	repairs   []bool
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{attempts: make(map[string]int)}
}

func (c *countingMetrics) CheckoutCompleted(result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

func (c *countingMetrics) SessionCreated(string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions++
}

func (c *countingMetrics) PersistAttempt(target string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := target + ":fail"
	if ok {
		key = target + ":ok"
	}
	c.attempts[key]++
}

func (c *countingMetrics) PersistExhausted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exhausted++
}

func (c *countingMetrics) PlanTypeRepaired(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.repairs = append(c.repairs, ok)
}
