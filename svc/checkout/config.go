package checkout

import (
	"strings"

	"github.com/dmitrymomot/checkout/pkg/plan"
	"github.com/dmitrymomot/checkout/pkg/retry"
)

// Config is the env-driven service and transport configuration.
type Config struct {
	// BaseURL is the public site URL used for success and cancel redirects.
	BaseURL          string `env:"CHECKOUT_BASE_URL" envDefault:"http://localhost:8888"`
	CORSOrigin       string `env:"CHECKOUT_CORS_ORIGIN" envDefault:"*"`
	CatalogFile      string `env:"CHECKOUT_CATALOG_FILE"`
	LifetimeAmount   int64  `env:"CHECKOUT_LIFETIME_AMOUNT" envDefault:"9900"`
	LifetimeCurrency string `env:"CHECKOUT_LIFETIME_CURRENCY" envDefault:"usd"`
	// ExposeErrorDetails overrides the environment default for 5xx details.
	ExposeErrorDetails *bool `env:"CHECKOUT_EXPOSE_ERROR_DETAILS"`

	Retry retry.Config
}

func (c Config) LifetimeMoney() plan.Money {
	return plan.Money{Amount: c.LifetimeAmount, Currency: strings.ToLower(c.LifetimeCurrency)}
}

// Catalog loads CatalogFile, or the built-in catalog when it is empty.
func (c Config) Catalog() (*plan.Catalog, error) {
	if c.CatalogFile == "" {
		return plan.DefaultCatalog(), nil
	}
	return plan.LoadCatalogFile(c.CatalogFile)
}
