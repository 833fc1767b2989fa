package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/taldoflemis/pizzeria/pacchetto"
	"github.com/taldoflemis/pizzeria/pacchetto/telemetry"
	"google.golang.org/grpc/health"
	healthgrpc "google.golang.org/grpc/health/grpc_health_v1"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()
	retcode := 0
	defer func() {
		os.Exit(retcode)
	}()

	slog.InfoContext(ctx, "Launching el-maestro")

	slog.InfoContext(ctx, "Loading config")
	settings, err := LoadConfig()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", slog.Any("err", err))
		retcode = 1
		return
	}

	slog.InfoContext(ctx, "Setting up opentelemetry")
	otelShutdown, err := telemetry.SetupOTelSDK(ctx, settings.App, settings.OpenTelemetry)
	if err != nil {
		slog.ErrorContext(ctx, "failed to setup telemetry", slog.Any("err", err))
		retcode = 1
		return
	}

	defer func() {
		err = errors.Join(err, otelShutdown(context.Background()))
		if err != nil {
			slog.ErrorContext(
				ctx,
				"failed to shutdown opentelemetry providers",
				slog.Any("err", err),
			)
			retcode = 1
		}
	}()

	slog.InfoContext(ctx, "Connecting to NATS server")
	nc, err := settings.Nats.GetNatsClient()
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to NATS server", slog.Any("err", err))
		retcode = 1
		return
	}
	defer nc.Drain()

	js, err := jetstream.New(nc)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create jetstream context", slog.Any("err", err))
		retcode = 1
		return
	}

	m, err := newMaestro(settings.Maestro, settings.Nats.Subject, js)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create maestro", slog.Any("err", err))
		retcode = 1
		return
	}
	if err = m.attachConsumer(ctx, js, settings.Nats.Stream); err != nil {
		retcode = 1
		return
	}

	slog.InfoContext(ctx, "Creating gRPC server")
	server := pacchetto.CreateGRPCServer()
	healthcheck := health.NewServer()
	healthgrpc.RegisterHealthServer(server, healthcheck)

	if settings.GRPCServer.EnableReflection {
		reflection.Register(server)
	}

	go func() {
		// asynchronously inspect dependencies and toggle serving status as needed
		ticker := time.NewTicker(time.Duration(settings.GRPCServer.AsyncHealthIntervalInSeconds) * time.Second)
		defer ticker.Stop()

		for {
			status := healthpb.HealthCheckResponse_SERVING
			if !nc.IsConnected() {
				status = healthpb.HealthCheckResponse_NOT_SERVING
			}
			healthcheck.SetServingStatus("", status)

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	lis, err := net.Listen("tcp", settings.GRPCServer.Address())
	if err != nil {
		slog.ErrorContext(ctx, "failed to listen", slog.Any("err", err))
		retcode = 1
		return
	}

	slog.InfoContext(ctx, "Starting gRPC server", slog.Any("addr", lis.Addr()))

	errChan := make(chan error, 2)
	go func() {
		if err := server.Serve(lis); err != nil {
			slog.ErrorContext(ctx, "failed to serve", slog.Any("err", err))
			errChan <- err
		}
	}()

	slog.InfoContext(ctx, "Starting to listen to new orders")
	go func() {
		if err := m.startTurn(ctx); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		slog.ErrorContext(ctx, "maestro stopped", slog.Any("err", err))
		retcode = 1
	case <-ctx.Done():
		// Wait for first Signal arrives
	}

	slog.InfoContext(ctx, "Shutting down gRPC server")
	healthcheck.Shutdown()
	server.GracefulStop()
	slog.InfoContext(ctx, "gRPC server stopped", slog.String("last-status", m.Status()))
}
