package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/checkout/pkg/logger"
	"github.com/dmitrymomot/checkout/pkg/plan"
	"github.com/dmitrymomot/checkout/pkg/retry"
	"github.com/dmitrymomot/checkout/pkg/users"
)

// Write target names used in logs and metrics.
const (
	TargetPrivileged = "privileged"
	TargetStandard   = "standard"
)

// WriteTarget is one user-store client the persister may write through.
// A Writer that also implements users.PlanTypeRepairer is used to repair an
// empty plan_type after a write.
type WriteTarget struct {
	Name   string
	Writer users.Writer
}

// Targets orders write targets by capability: the privileged client first
// when configured, then the standard client.
func Targets(standard, privileged users.Writer) []WriteTarget {
	var targets []WriteTarget
	if privileged != nil {
		targets = append(targets, WriteTarget{Name: TargetPrivileged, Writer: privileged})
	}
	if standard != nil {
		targets = append(targets, WriteTarget{Name: TargetStandard, Writer: standard})
	}
	return targets
}

// PersistInput is the pending selection to record for one user.
type PersistInput struct {
	UserID    string
	Decision  plan.Decision
	SessionID string
}

func (in PersistInput) patch(now time.Time) users.Patch {
	return users.Patch{
		SubscriptionStatus: string(in.Decision.PendingStatus),
		PlanType:           string(in.Decision.Name),
		SelectedPlan:       in.Decision.SelectedPlan,
		StripeSessionID:    in.SessionID,
		UpdatedAt:          now.UTC(),
	}
}

// PersistResult reports how the persistence loop ended.
type PersistResult struct {
	Attempts int
	Target   string
	Err      error
}

func (r PersistResult) OK() bool { return r.Err == nil }

// Persister writes the pending plan selection under a bounded retry policy.
type Persister struct {
	targets []WriteTarget
	reader  users.Reader
	policy  retry.Policy
	log     *slog.Logger
	metrics Metrics
	now     func() time.Time
}

type PersisterOption func(*Persister)

func WithPersisterLogger(l *slog.Logger) PersisterOption {
	return func(p *Persister) {
		if l != nil {
			p.log = l
		}
	}
}

func WithPersisterMetrics(m Metrics) PersisterOption {
	return func(p *Persister) {
		if m != nil {
			p.metrics = m
		}
	}
}

func WithPersisterClock(now func() time.Time) PersisterOption {
	return func(p *Persister) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPersister builds a persister over targets, verifying writes through
// reader. Panics when there are no targets or no reader.
func NewPersister(targets []WriteTarget, reader users.Reader, policy retry.Policy, opts ...PersisterOption) *Persister {
	if len(targets) == 0 {
		panic(ErrNoTargets)
	}
	for _, t := range targets {
		if t.Writer == nil {
			panic(fmt.Sprintf("checkout: write target %q has no writer", t.Name))
		}
	}
	if reader == nil {
		panic("checkout: verification reader cannot be nil")
	}
	p := &Persister{
		targets: targets,
		reader:  reader,
		policy:  policy,
		log:     logger.Discard(),
		metrics: noopMetrics{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Persist records in on the user record. It never returns an error; the
// outcome is reported in PersistResult and logged.
func (p *Persister) Persist(ctx context.Context, in PersistInput) PersistResult {
	log := p.log.With(
		logger.UserID(in.UserID),
		logger.PriceID(in.Decision.SelectedPlan),
		logger.SessionID(in.SessionID),
	)
	filter := users.Filter{ID: in.UserID}

	var written WriteTarget
	attempts, err := p.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		patch := in.patch(p.now())
		var errs []error
		for _, target := range p.targets {
			werr := target.Writer.Update(ctx, filter, patch)
			p.metrics.PersistAttempt(target.Name, werr == nil)
			if werr == nil {
				written = target
				log.DebugContext(ctx, "pending plan written",
					logger.Attempt(attempt),
					logger.Target(target.Name),
				)
				return nil
			}
			log.WarnContext(ctx, "pending plan write failed",
				logger.Attempt(attempt),
				logger.Target(target.Name),
				logger.Error(werr),
			)
			errs = append(errs, fmt.Errorf("%s: %w", target.Name, werr))
		}
		return errors.Join(errs...)
	})
	if err != nil {
		p.metrics.PersistExhausted()
		log.ErrorContext(ctx, "failed to persist pending plan, leaving for reconciliation",
			logger.Attempt(attempts),
			logger.Plan(string(in.Decision.Name)),
			logger.Error(err),
		)
		return PersistResult{Attempts: attempts, Err: err}
	}

	p.verify(ctx, log, in, written)
	return PersistResult{Attempts: attempts, Target: written.Name}
}

// verify reads the record back through the standard reader. Mismatches are
// only logged since a concurrent writer may have raced this one.
func (p *Persister) verify(ctx context.Context, log *slog.Logger, in PersistInput, written WriteTarget) {
	rec, err := p.reader.FindOne(ctx, users.Filter{ID: in.UserID})
	if err != nil {
		log.WarnContext(ctx, "could not verify pending plan write", logger.Error(err))
		return
	}

	wantPlan := string(in.Decision.Name)
	wantStatus := string(in.Decision.PendingStatus)
	if rec.PlanType != wantPlan || rec.SubscriptionStatus != wantStatus {
		log.WarnContext(ctx, "pending plan read-back mismatch",
			slog.String("want_plan_type", wantPlan),
			slog.String("got_plan_type", rec.PlanType),
			slog.String("want_status", wantStatus),
			slog.String("got_status", rec.SubscriptionStatus),
		)
	}
	if rec.PlanType != "" {
		return
	}

	repairer, ok := written.Writer.(users.PlanTypeRepairer)
	if !ok {
		return
	}
	if err := repairer.RepairPlanType(ctx, in.UserID, wantPlan); err != nil {
		p.metrics.PlanTypeRepaired(false)
		log.ErrorContext(ctx, "plan_type repair failed", logger.Target(written.Name), logger.Error(err))
		return
	}
	p.metrics.PlanTypeRepaired(true)
	log.InfoContext(ctx, "plan_type repaired", logger.Target(written.Name))
}
