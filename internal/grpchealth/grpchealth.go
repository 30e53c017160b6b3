// Package grpchealth serves the standard grpc.health.v1.Health service.
// Each registered service name is backed by a probe, typically a storage ping.
package grpchealth

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Probe reports the health of one dependency.
type Probe interface {
	Ping(ctx context.Context) error
}

type alwaysUp struct{}

func (alwaysUp) Ping(context.Context) error {
	return nil
}

// AlwaysServing is a probe for services without external dependencies.
var AlwaysServing Probe = alwaysUp{}

// Checker answers health checks by calling the probe registered for the service.
// The empty service name stands for the whole server and is SERVING when every probe passes.
type Checker struct {
	healthpb.UnimplementedHealthServer

	probes map[string]Probe
}

func NewChecker() *Checker {
	return &Checker{probes: map[string]Probe{}}
}

// Register adds a probe for service. It must be called before the server starts.
func (c *Checker) Register(service string, probe Probe) {
	c.probes[service] = probe
}

func (c *Checker) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	service := req.GetService()
	if service == "" {
		for _, probe := range c.probes {
			if probe.Ping(ctx) != nil {
				return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
			}
		}
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
	}

	probe, found := c.probes[service]
	if !found {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", service)
	}
	if err := probe.Ping(ctx); err != nil {
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}

	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}

// NewServer creates a gRPC server with the health service and the logging
// interceptor installed, and a listener bound to addr.
func NewServer(addr string, checker *Checker) (*grpc.Server, net.Listener, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	return newGRPCServer(checker), lis, nil
}

func newGRPCServer(checker *Checker) *grpc.Server {
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			UnaryLoggingInterceptor([]string{
				healthpb.Health_Check_FullMethodName,
			}),
		),
	)
	healthpb.RegisterHealthServer(server, checker)

	return server
}
