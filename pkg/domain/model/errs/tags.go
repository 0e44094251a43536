package errs

import "github.com/m-mizutani/goerr/v2"

var (
	// Client errors (4xx)
	TagNotFound     = goerr.NewTag("not_found")    // 404
	TagValidation   = goerr.NewTag("validation")   // 400
	TagUnauthorized = goerr.NewTag("unauthorized") // 401
	TagForbidden    = goerr.NewTag("forbidden")    // 403
	TagConflict     = goerr.NewTag("conflict")     // 409

	// Server errors (5xx)
	TagInternal = goerr.NewTag("internal") // 500
	TagDatabase = goerr.NewTag("database") // 500 (specific to DB errors)

	// Request to the remote service failed or timed out. Retrying is the
	// caller's choice, never automatic.
	TagTransient = goerr.NewTag("transient")

	// Local cache contents were unparseable. Recovered by falling back to an
	// empty value, never shown to the user.
	TagMalformedCache = goerr.NewTag("malformed_cache")
)
