package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/roombooking/internal/health"
	"github.com/vladislavdragonenkov/roombooking/internal/metrics"
	"github.com/vladislavdragonenkov/roombooking/internal/service/booking"
	"github.com/vladislavdragonenkov/roombooking/internal/service/httpapi"
	"github.com/vladislavdragonenkov/roombooking/internal/service/outbox"
	"github.com/vladislavdragonenkov/roombooking/internal/version"
)

// services собирает ядро бронирования поверх выбранных хранилищ.
type services struct {
	rooms        *booking.RoomService
	students     *booking.StudentService
	reservations *booking.ReservationService
}

func newServices(deps *runtimeDependencies, withOutbox bool, logger *log.Entry) services {
	options := []booking.Option{
		booking.WithMetrics(metrics.NewBookingMetrics()),
		booking.WithHistory(deps.history),
	}
	if withOutbox {
		options = append(options, booking.WithOutbox(deps.outbox))
	}

	return services{
		rooms: booking.NewRoomService(deps.rooms,
			append(options, booking.WithLogger(logger.WithField("component", "room-service")))...),
		students: booking.NewStudentService(deps.students, deps.reservations,
			append(options, booking.WithLogger(logger.WithField("component", "student-service")))...),
		reservations: booking.NewReservationService(deps.reservations,
			append(options,
				booking.WithLogger(logger.WithField("component", "reservation-service")),
				booking.WithRoomLookup(deps.rooms),
			)...),
	}
}

// Run поднимает REST API, gRPC health, метрики и outbox worker и держит их до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	if err := cfg.Validate(); err != nil {
		return err
	}

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close(logger)

	publishers, err := initPublishers(cfg, logger)
	if err != nil {
		logger.WithError(err).Warn("failed to connect events broker, continuing without event publishing")
		publishers = nil
	}
	defer closePublishers(publishers, logger)

	svc := newServices(deps, publishers != nil, logger)

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	workerDone := make(chan struct{})
	if publishers != nil {
		worker := outbox.NewWorker(deps.outbox, publishers.events,
			outbox.WithDLQPublisher(publishers.dlq),
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
		)
		go func() {
			defer close(workerDone)
			worker.Run(workerCtx)
		}()
	} else {
		close(workerDone)
	}

	grpcServer, healthServer := newGRPCServer(logger)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	for name, checker := range deps.checkers {
		healthHandler.RegisterChecker(name, checker)
	}
	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	apiHandler := httpapi.NewHandler(svc.rooms, svc.students, svc.reservations,
		httpapi.WithLogger(logger.WithField("component", "http-api")),
		httpapi.WithClock(domain.SystemClock{}),
	)
	apiSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewServer(apiHandler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		shutdownHTTP(metricsSrv, logger)
		return fmt.Errorf("listen grpc: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Infof("gRPC сервер слушает %s", cfg.GRPCAddr)
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		logger.Infof("REST API слушает %s", cfg.HTTPAddr)
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http api: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем серверы")
		runErr = ctx.Err()
	case err := <-errCh:
		if !errors.Is(err, grpc.ErrServerStopped) {
			runErr = err
		}
	}

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	shutdownHTTPWithTimeout(apiSrv, cfg.ShutdownTimeout, logger)
	stopGRPC(grpcServer, cfg.ShutdownTimeout, logger)
	shutdownHTTP(metricsSrv, logger)

	stopWorker()
	<-workerDone
	return runErr
}

// newGRPCServer собирает gRPC-сервер со стандартным health-сервисом, reflection
// и Prometheus-интерсепторами.
func newGRPCServer(logger *log.Entry) (*grpc.Server, *health.Server) {
	grpcMetrics := promgrpc.NewServerMetrics()
	if err := prometheus.Register(grpcMetrics); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*promgrpc.ServerMetrics); ok {
				grpcMetrics = existing
			}
		} else {
			logger.WithError(err).Warn("failed to register grpc metrics")
		}
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(grpcMetrics.StreamServerInterceptor()),
	)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(version.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	reflection.Register(grpcServer)
	grpcMetrics.InitializeMetrics(grpcServer)
	return grpcServer, healthServer
}

func stopGRPC(server *grpc.Server, timeout time.Duration, logger *log.Entry) {
	stopped := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(timeout):
		logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
		server.Stop()
	}
}

// startMetricsServer запускает служебный HTTP-сервер: /metrics и health-пробы.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	healthHandler.Register(mux)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	shutdownHTTPWithTimeout(srv, 5*time.Second, logger)
}

func shutdownHTTPWithTimeout(srv *http.Server, timeout time.Duration, logger *log.Entry) {
	if srv == nil {
		return
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).WithField("addr", srv.Addr).Warn("http shutdown with error")
	}
}
