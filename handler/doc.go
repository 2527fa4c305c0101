// Package handler adapts typed request handlers to net/http.
//
// A HandlerFunc receives the bound request value and returns a Response;
// Wrap runs the binder, invokes the handler and renders the result. Errors
// from binding or rendering go to the configured ErrorHandler.
//
//	h := handler.Wrap(func(r *http.Request, req CreateRequest) handler.Response {
//		return handler.JSON(result)
//	}, handler.WithBinder[CreateRequest](binder.JSON()))
package handler
