// Package billing creates hosted checkout sessions with an external payment
// provider.
//
// Provider is the only abstraction the checkout service depends on. A session
// is created exactly once per request: implementations never retry, because a
// retried create can charge the customer twice for the same intent.
//
// StripeProvider is the default implementation. PaddleProvider maps catalog
// price ids onto Paddle catalog prices for deployments billing through Paddle.
package billing
