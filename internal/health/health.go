// Package health serves the standard gRPC health protocol for the kiosk.
// The overall service is SERVING while the daemon runs; CameraService is
// SERVING only while a camera stream is bound.
package health

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/GriffinCanCode/facekiosk/internal/camera"
	"github.com/GriffinCanCode/facekiosk/internal/trace"
)

// CameraService is the health service name tracking the camera stream.
const CameraService = "kiosk.camera"

// Service owns the gRPC server and its health state.
type Service struct {
	health *health.Server
	server *grpc.Server
}

// New creates a health service with the camera not yet streaming.
func New() *Service {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(CameraService, healthpb.HealthCheckResponse_NOT_SERVING)

	gs := grpc.NewServer(grpc.UnaryInterceptor(trace.UnaryServerInterceptor()))
	healthpb.RegisterHealthServer(gs, hs)

	return &Service{health: hs, server: gs}
}

// StreamChanged flips CameraService as streams are bound and released.
func (s *Service) StreamChanged(st camera.Stream) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if st != nil {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(CameraService, status)
}

// Serve accepts connections on lis until Stop.
func (s *Service) Serve(lis net.Listener) error {
	err := s.server.Serve(lis)
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Service) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	slog.Info("health server listening", "addr", lis.Addr().String())

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return s.Serve(lis)
}

// Stop marks every service NOT_SERVING and stops the server gracefully.
func (s *Service) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
