package errs

import (
	"context"
	"log/slog"

	"github.com/campus-lab/campusboard/pkg/utils/logging"
)

// Handle reports an error that is not recovered locally. Cache corruption is
// recovered by the caller and only logged at debug level.
func Handle(ctx context.Context, err error) {
	logger := logging.From(ctx)
	logger.Error("Error: "+err.Error(), slog.Any("error", err))
}

// HandleRecovered logs an error that was absorbed by a local fallback.
func HandleRecovered(ctx context.Context, err error) {
	logging.From(ctx).Debug("recovered from error", slog.Any("error", err))
}
