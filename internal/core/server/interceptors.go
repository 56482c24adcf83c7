package server

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solatis/formkeeper/internal/log"
)

// RecoveryInterceptor turns handler panics into INTERNAL errors.
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.WithContext(ctx).Error("handler panic",
					"method", info.FullMethod,
					"panic", fmt.Sprint(r),
					"stack", string(debug.Stack()),
				)
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// LoggingInterceptor stores a request logger in the context and logs
// each call with its code and duration.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		reqLogger := logger.With("method", info.FullMethod)
		ctx = log.NewContext(ctx, reqLogger)

		resp, err := handler(ctx, req)

		attrs := []any{
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		}
		switch status.Code(err) {
		case codes.OK, codes.InvalidArgument, codes.NotFound:
			reqLogger.Info("request", attrs...)
		default:
			reqLogger.Warn("request", append(attrs, "error", err)...)
		}
		return resp, err
	}
}

// TimeoutInterceptor bounds each call by d unless the caller's deadline
// is sooner.
func TimeoutInterceptor(d time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if d <= 0 {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return handler(ctx, req)
	}
}
