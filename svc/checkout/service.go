package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/checkout/pkg/billing"
	"github.com/dmitrymomot/checkout/pkg/logger"
	"github.com/dmitrymomot/checkout/pkg/plan"
	"github.com/dmitrymomot/checkout/pkg/users"
)

// sessionIDPlaceholder is substituted by the provider after payment.
const sessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

// Result is returned once a provider session exists.
type Result struct {
	SessionID  string
	SessionURL string
	UserID     string
	PlanName   plan.Name
	Mode       plan.Mode
	// Persisted is false when the pending plan could not be recorded.
	Persisted bool
}

// Service orchestrates one checkout per call.
type Service struct {
	resolver  *plan.Resolver
	provider  billing.Provider
	users     users.Reader
	persister *Persister
	baseURL   string
	log       *slog.Logger
	metrics   Metrics
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewService wires the orchestrator. Panics on nil dependencies.
func NewService(resolver *plan.Resolver, provider billing.Provider, reader users.Reader, persister *Persister, baseURL string, opts ...Option) *Service {
	if resolver == nil {
		panic("checkout: resolver cannot be nil")
	}
	if provider == nil {
		panic("checkout: provider cannot be nil")
	}
	if reader == nil {
		panic("checkout: user reader cannot be nil")
	}
	if persister == nil {
		panic("checkout: persister cannot be nil")
	}
	s := &Service{
		resolver:  resolver,
		provider:  provider,
		users:     reader,
		persister: persister,
		baseURL:   strings.TrimRight(baseURL, "/"),
		log:       logger.Discard(),
		metrics:   noopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCheckout validates req, confirms the user exists, resolves the plan,
// creates exactly one provider session and records the pending selection.
//
// Errors are *plan.ValidationError, ErrUserNotFound, ErrUserLookup or
// *billing.ProviderError. Persistence failures never fail the call.
func (s *Service) CreateCheckout(ctx context.Context, req plan.Request) (*Result, error) {
	log := s.log.With(
		logger.UserID(req.UserID),
		logger.PriceID(req.PriceID),
		logger.Provider(s.provider.Name()),
	)

	if err := req.Validate(); err != nil {
		s.metrics.CheckoutCompleted(ResultValidationError)
		return nil, err
	}

	// Past validation the request runs to completion even if the caller
	// disconnects; the provider session is an irrevocable side effect.
	ctx = context.WithoutCancel(ctx)

	if _, err := s.users.FindOne(ctx, users.Filter{ID: req.UserID, Email: req.CustomerEmail}); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			s.metrics.CheckoutCompleted(ResultUserNotFound)
			log.InfoContext(ctx, "checkout for unknown user")
			return nil, ErrUserNotFound
		}
		s.metrics.CheckoutCompleted(ResultInternalError)
		log.ErrorContext(ctx, "user lookup failed", logger.Error(err))
		return nil, errors.Join(ErrUserLookup, err)
	}

	decision, err := s.resolver.Resolve(req)
	if err != nil {
		s.metrics.CheckoutCompleted(ResultValidationError)
		log.InfoContext(ctx, "checkout request rejected", logger.Error(err))
		return nil, err
	}
	log = log.With(logger.Plan(string(decision.Name)), logger.Mode(string(decision.Mode)))

	session, err := s.provider.CreateSession(ctx, billing.SessionParams{
		Mode:              decision.Mode,
		LineItem:          decision.LineItem,
		CustomerEmail:     req.CustomerEmail,
		ClientReferenceID: req.UserID,
		SuccessURL:        s.successURL(req.UserID),
		CancelURL:         s.cancelURL(),
		Metadata:          decision.Metadata.Map(),
	})
	if err == nil && (session == nil || session.ID == "") {
		err = ErrNoSession
	}
	if err != nil {
		s.metrics.CheckoutCompleted(ResultProviderError)
		log.ErrorContext(ctx, "checkout session creation failed", logger.Error(err))
		var perr *billing.ProviderError
		if errors.As(err, &perr) {
			return nil, err
		}
		return nil, &billing.ProviderError{
			Provider:   s.provider.Name(),
			StatusCode: http.StatusInternalServerError,
			Message:    err.Error(),
			Err:        err,
		}
	}
	s.metrics.SessionCreated(s.provider.Name(), string(decision.Mode))
	log = log.With(logger.SessionID(session.ID))
	log.InfoContext(ctx, "checkout session created")

	persisted := s.persister.Persist(ctx, PersistInput{
		UserID:    req.UserID,
		Decision:  decision,
		SessionID: session.ID,
	})

	s.metrics.CheckoutCompleted(ResultSuccess)
	return &Result{
		SessionID:  session.ID,
		SessionURL: session.URL,
		UserID:     req.UserID,
		PlanName:   decision.Name,
		Mode:       decision.Mode,
		Persisted:  persisted.OK(),
	}, nil
}

func (s *Service) successURL(userID string) string {
	return fmt.Sprintf("%s/success.html?session_id=%s&userId=%s", s.baseURL, sessionIDPlaceholder, url.QueryEscape(userID))
}

func (s *Service) cancelURL() string {
	return s.baseURL + "?checkout=cancelled"
}
