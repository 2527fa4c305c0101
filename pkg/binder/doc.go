// Package binder decodes HTTP request bodies into typed request structs.
//
// The JSON binder is lenient: it accepts a missing Content-Type (browser
// fetch calls from static frontends often omit it) and ignores unknown
// fields so older clients keep working.
//
//	var req CreateCheckoutRequest
//	if err := binder.JSON()(r, &req); err != nil {
//		// errors.Is(err, binder.ErrFailedToParseJSON)
//	}
package binder
