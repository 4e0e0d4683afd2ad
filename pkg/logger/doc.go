// Package logger builds the service's *slog.Logger and keeps attribute
// names consistent across packages.
//
// New returns a logger configured by functional options: output format
// (json or text), minimum level, static attributes and ContextExtractor
// callbacks that pull request-scoped values (request id, browser id) out of
// the context on every record.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "anilink"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.ErrorContext(ctx, "token exchange failed",
//	    logger.Component("exchange"),
//	    logger.Error(err),
//	)
//
// Services never construct their own handlers; they accept a *slog.Logger
// through a WithLogger option and fall back to Discard.
package logger
