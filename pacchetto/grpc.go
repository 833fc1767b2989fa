package pacchetto

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/retry"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func CreateGRPCClient(ctx context.Context, cfg GRPCClientSettings) (*grpc.ClientConn, error) {
	options := make([]grpc.DialOption, 0)
	options = append(options, grpc.WithStatsHandler(otelgrpc.NewClientHandler()))

	retryOpts := []retry.CallOption{
		retry.WithMax(cfg.Retries),
		retry.WithCodes(codes.Unavailable, codes.ResourceExhausted),
		retry.WithBackoff(retry.BackoffExponential(time.Duration(cfg.ExponentialBackoffBaseInMilliseconds) * time.Millisecond)),
	}

	options = append(options, grpc.WithUnaryInterceptor(retry.UnaryClientInterceptor(retryOpts...)))
	options = append(options, grpc.WithStreamInterceptor(retry.StreamClientInterceptor(retryOpts...)))
	options = append(options, grpc.WithTransportCredentials(insecure.NewCredentials()))

	conn, err := grpc.NewClient(cfg.Address, options...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create grpc client", slog.Any("err", err))
		return nil, err
	}

	return conn, nil
}

func CreateGRPCServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)

	return srv
}

// HealthProbe asks a grpc health server whether service is serving. An empty
// service checks the server as a whole.
func HealthProbe(conn grpc.ClientConnInterface, service string, timeout time.Duration) func(ctx context.Context) error {
	client := healthpb.NewHealthClient(conn)
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
		if err != nil {
			return err
		}
		if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			return fmt.Errorf("grpc health status is %s", resp.GetStatus())
		}
		return nil
	}
}
