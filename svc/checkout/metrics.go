package checkout

// Metrics receives checkout outcome counters. *metrics.Collector satisfies it.
type Metrics interface {
	CheckoutCompleted(result string)
	SessionCreated(provider, mode string)
	PersistAttempt(target string, ok bool)
	PersistExhausted()
	PlanTypeRepaired(ok bool)
}

// Checkout outcome labels.
const (
	ResultSuccess         = "success"
	ResultValidationError = "validation_error"
	ResultUserNotFound    = "user_not_found"
	ResultProviderError   = "provider_error"
	ResultInternalError   = "internal_error"
)

type noopMetrics struct{}

func (noopMetrics) CheckoutCompleted(string)      {}
func (noopMetrics) SessionCreated(string, string) {}
func (noopMetrics) PersistAttempt(string, bool)   {}
func (noopMetrics) PersistExhausted()             {}
func (noopMetrics) PlanTypeRepaired(bool)         {}
