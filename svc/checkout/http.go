package checkout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/checkout/handler"
	"github.com/dmitrymomot/checkout/pkg/billing"
	"github.com/dmitrymomot/checkout/pkg/binder"
	"github.com/dmitrymomot/checkout/pkg/environment"
	"github.com/dmitrymomot/checkout/pkg/httpserver"
	"github.com/dmitrymomot/checkout/pkg/logger"
	"github.com/dmitrymomot/checkout/pkg/plan"
	"github.com/dmitrymomot/checkout/pkg/ratelimit"
	"github.com/dmitrymomot/checkout/pkg/requestid"
)

const (
	CheckoutPath = "/create-checkout-session"
	// LegacyCheckoutPath is the serverless function path older frontends call.
	LegacyCheckoutPath = "/.netlify/functions/create-checkout-session"
)

// Checkouter is the service behind the HTTP transport.
type Checkouter interface {
	CreateCheckout(ctx context.Context, req plan.Request) (*Result, error)
}

type RouterOption func(*routerConfig)

type routerConfig struct {
	corsOrigin     string
	env            environment.Environment
	exposeDetails  *bool
	log            *slog.Logger
	limiter        ratelimit.Limiter
	keyFunc        ratelimit.KeyFunc
	httpMetrics    func(http.Handler) http.Handler
	metricsHandler http.Handler
	readiness      []func(context.Context) error
}

func WithCORSOrigin(origin string) RouterOption {
	return func(c *routerConfig) { c.corsOrigin = origin }
}

// WithEnvironment sets the environment attached to request contexts. 5xx
// details are exposed in development unless WithErrorDetails says otherwise.
func WithEnvironment(env environment.Environment) RouterOption {
	return func(c *routerConfig) { c.env = env }
}

func WithErrorDetails(expose bool) RouterOption {
	return func(c *routerConfig) { c.exposeDetails = &expose }
}

func WithRouterLogger(l *slog.Logger) RouterOption {
	return func(c *routerConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRateLimit guards the checkout POST routes. keyFunc defaults to
// ratelimit.ByClientIP.
func WithRateLimit(limiter ratelimit.Limiter, keyFunc ratelimit.KeyFunc) RouterOption {
	return func(c *routerConfig) {
		c.limiter = limiter
		if keyFunc != nil {
			c.keyFunc = keyFunc
		}
	}
}

// WithHTTPMetrics installs request instrumentation and serves h on /metrics.
func WithHTTPMetrics(mw func(http.Handler) http.Handler, h http.Handler) RouterOption {
	return func(c *routerConfig) {
		c.httpMetrics = mw
		c.metricsHandler = h
	}
}

// WithReadiness adds checks served on /readyz.
func WithReadiness(checks ...func(context.Context) error) RouterOption {
	return func(c *routerConfig) { c.readiness = append(c.readiness, checks...) }
}

// NewRouter builds the HTTP surface: the checkout routes plus health and
// metrics endpoints.
func NewRouter(svc Checkouter, opts ...RouterOption) http.Handler {
	if svc == nil {
		panic("checkout: service cannot be nil")
	}
	cfg := &routerConfig{
		corsOrigin: "*",
		env:        environment.Production,
		log:        logger.Discard(),
		keyFunc:    ratelimit.ByClientIP,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	expose := cfg.env.IsDevelopment()
	if cfg.exposeDetails != nil {
		expose = *cfg.exposeDetails
	}
	h := &httpHandler{svc: svc, validator: newRequestValidator(), log: cfg.log, exposeDetails: expose}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(environment.Middleware(cfg.env))
	if cfg.httpMetrics != nil {
		r.Use(cfg.httpMetrics)
	}
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(cfg.corsOrigin))

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = handler.Error(http.StatusMethodNotAllowed, handler.ErrMethodNotAllowed.Message()).Render(w, r)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = handler.Error(http.StatusNotFound, handler.ErrNotFound.Message()).Render(w, r)
	})

	create := handler.Wrap(h.createCheckout,
		handler.WithBinder[CreateCheckoutRequest](binder.JSON()),
		handler.WithErrorHandler[CreateCheckoutRequest](h.renderError),
	)

	r.Group(func(r chi.Router) {
		if cfg.limiter != nil {
			r.Use(ratelimit.Middleware(cfg.limiter, cfg.keyFunc,
				ratelimit.WithOnLimitReached(func(w http.ResponseWriter, r *http.Request, _ *ratelimit.Result) {
					_ = handler.Error(http.StatusTooManyRequests, handler.ErrTooManyRequests.Message()).Render(w, r)
				}),
				ratelimit.WithOnError(func(r *http.Request, err error) {
					cfg.log.WarnContext(r.Context(), "rate limiter unavailable, allowing request", logger.Error(err))
				}),
			))
		}
		r.Post(CheckoutPath, create)
		r.Post(LegacyCheckoutPath, create)
	})
	r.Options(CheckoutPath, h.preflight)
	r.Options(LegacyCheckoutPath, h.preflight)

	r.Get("/healthz", httpserver.HealthCheckHandler(cfg.log))
	r.Get("/readyz", httpserver.HealthCheckHandler(cfg.log, cfg.readiness...))
	if cfg.metricsHandler != nil {
		r.Handle("/metrics", cfg.metricsHandler)
	}
	return r
}

type httpHandler struct {
	svc           Checkouter
	validator     *requestValidator
	log           *slog.Logger
	exposeDetails bool
}

func (h *httpHandler) preflight(w http.ResponseWriter, r *http.Request) {
	_ = handler.Empty(http.StatusOK).Render(w, r)
}

func (h *httpHandler) createCheckout(r *http.Request, req CreateCheckoutRequest) handler.Response {
	req = req.normalize()
	if err := h.validator.validate(req); err != nil {
		return h.errorResponse(r, err)
	}
	res, err := h.svc.CreateCheckout(r.Context(), req.toPlanRequest())
	if err != nil {
		return h.errorResponse(r, err)
	}
	return handler.JSON(newCreateCheckoutResponse(res))
}

func (h *httpHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	_ = h.errorResponse(r, err).Render(w, r)
}

// errorResponse maps domain and transport errors onto the JSON error body.
func (h *httpHandler) errorResponse(r *http.Request, err error) handler.Response {
	var (
		verr  *plan.ValidationError
		ferr  *FieldError
		perr  *billing.ProviderError
		hterr handler.HTTPError
	)
	switch {
	case errors.Is(err, binder.ErrFailedToParseJSON),
		errors.Is(err, binder.ErrUnsupportedMediaType),
		errors.Is(err, binder.ErrBodyTooLarge):
		return handler.Error(http.StatusBadRequest, "Invalid request body")
	case errors.As(err, &verr):
		return handler.Error(http.StatusBadRequest, verr.Error())
	case errors.As(err, &ferr):
		return handler.Error(http.StatusBadRequest, ferr.Error())
	case errors.Is(err, ErrUserNotFound):
		return handler.Error(http.StatusNotFound, "User not found")
	case errors.As(err, &perr):
		return handler.ErrorWithDetails(perr.StatusCode, perr.Message, h.details(err))
	case errors.As(err, &hterr):
		return handler.Error(hterr.Code, hterr.Message())
	default:
		h.log.ErrorContext(r.Context(), "checkout request failed", logger.Error(err))
		return handler.ErrorWithDetails(http.StatusInternalServerError, handler.ErrInternalServerError.Message(), h.details(err))
	}
}

func (h *httpHandler) details(err error) string {
	if !h.exposeDetails {
		return ""
	}
	return err.Error()
}
