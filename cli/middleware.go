package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runFunc func(cmd *cobra.Command, args []string) error

// RecoveryMiddleware turns a panic inside a command into an error after
// logging it.
func RecoveryMiddleware(logger func() *zap.Logger, next runFunc) runFunc {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger().Error("panic recovered",
					zap.Any("error", r),
					zap.String("command", cmd.CommandPath()),
					zap.Strings("args", args),
					zap.Time("timestamp", time.Now()),
				)
				err = fmt.Errorf("internal error: %v", r)
			}
		}()
		return next(cmd, args)
	}
}

func RunLoggerMiddleware(logger func() *zap.Logger, next runFunc) runFunc {
	return func(cmd *cobra.Command, args []string) error {
		start := time.Now()

		logger().Debug("running command",
			zap.String("command", cmd.CommandPath()),
			zap.Strings("args", args),
			zap.Time("timestamp", start),
		)

		err := next(cmd, args)

		fields := []zap.Field{
			zap.String("command", cmd.CommandPath()),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		logger().Debug("completed command", fields...)
		return err
	}
}
