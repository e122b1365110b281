package server

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/flightwatch/price-tracker/pkg/logger"
)

// UnaryLoggingInterceptor пишет в лог каждый вызов: метод, код ответа, длительность.
func UnaryLoggingInterceptor(log logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		kv := []interface{}{
			"method", info.FullMethod,
			"code", code.String(),
			"duration", time.Since(start).String(),
		}
		switch code {
		case codes.OK:
			log.Debug("grpc request", kv...)
		case codes.Internal, codes.Unknown:
			log.Error("grpc request failed", append(kv, "error", err)...)
		default:
			log.Warn("grpc request rejected", append(kv, "error", err)...)
		}
		return resp, err
	}
}

// UnaryRecoveryInterceptor превращает панику обработчика в codes.Internal.
func UnaryRecoveryInterceptor(log logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic in grpc handler", "method", info.FullMethod, "panic", r)
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
