// Package ratelimit implements a fixed-window request limiter with pluggable
// counter storage and HTTP middleware.
//
// The checkout route uses it to absorb double-submit floods before they reach
// the payment provider. The middleware fails open: a counter store outage
// never blocks a checkout.
package ratelimit
