package aws

import (
	"context"
	"time"

	"github.com/yaegashi/grafanaops/internal/logging"
)

// withMethodLogger implements the span pattern for AWS driver logging.
// It emits a START line and returns a context carrying the driver attribute,
// plus a cleanup function that emits END:OK or END:FAILED.
//
//	ctx, cleanup := d.withMethodLogger(ctx, "StackDeploy")
//	defer func() { cleanup(err) }()
func (d *driver) withMethodLogger(ctx context.Context, method string) (context.Context, func(err error)) {
	startAt := time.Now()

	logger := logging.FromContext(ctx).With("driver", "AWS."+method)
	ctx = logging.WithLogger(ctx, logger)

	logger.Info(ctx, "AWS:"+method+":START")

	cleanup := func(err error) {
		elapsed := time.Since(startAt).Seconds()
		if err == nil {
			logger.Info(ctx, "AWS:"+method+":END:OK", "err", "", "elapsed", elapsed)
			return
		}
		errStr := err.Error()
		if len(errStr) > 32 {
			errStr = errStr[:32] + "..."
		}
		logger.Warn(ctx, "AWS:"+method+":END:FAILED", "err", errStr, "elapsed", elapsed)
	}

	return ctx, cleanup
}
