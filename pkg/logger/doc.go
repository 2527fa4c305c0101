// Package logger builds *slog.Logger instances configured through functional
// options and provides attribute constructors that keep key names consistent
// across the checkout service.
//
// New picks a JSON or text handler based on the configured Format and wraps it
// with LogHandlerDecorator, which runs registered ContextExtractor callbacks on
// every record. That is how request-scoped values such as the request id end
// up in log lines without being passed around explicitly.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.AppEnv, "checkout"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "checkout session created",
//	    logger.UserID(req.UserID),
//	    logger.SessionID(session.ID),
//	)
//
// Attribute helpers that take an error or an optional value return an empty
// slog.Attr for nil input, which slog drops.
package logger
