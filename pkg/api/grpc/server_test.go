package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/aescanero/devops-info/internal/application/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func startBufconn(t *testing.T) (*Server, healthpb.HealthClient) {
	t.Helper()

	s := NewServer(&Config{Addr: "bufnet", Logger: zap.NewNop()})
	lis := bufconn.Listen(1024 * 1024)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
		assert.NoError(t, <-errCh)
	})

	return s, healthpb.NewHealthClient(conn)
}

func check(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealthStartsNotServing(t *testing.T) {
	_, client := startBufconn(t)

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ServiceName))
}

func TestHealthFollowsMonitor(t *testing.T) {
	s, client := startBufconn(t)

	monitor := health.NewMonitor(time.Hour, nil, zap.NewNop())
	monitor.AddListener(s)

	monitor.MarkServing()
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ServiceName))

	monitor.MarkDraining()
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ServiceName))
}

func TestStartFailsOnBadAddress(t *testing.T) {
	s := NewServer(&Config{Addr: "256.0.0.1:-1", Logger: zap.NewNop()})

	_, err := s.Listen()
	assert.Error(t, err)
	assert.Error(t, s.Start())
}

func TestListenReportsPortConflict(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	s := NewServer(&Config{Addr: taken.Addr().String(), Logger: zap.NewNop()})

	_, err = s.Listen()
	assert.Error(t, err)
}

func TestServeOverTCP(t *testing.T) {
	s := NewServer(&Config{Addr: "127.0.0.1:0", Logger: zap.NewNop()})
	s.OnStateChange(health.StateServing)

	lis, err := s.Listen()
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(lis) }()

	conn, err := grpc.NewClient(lis.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, healthpb.NewHealthClient(conn), ServiceName))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, <-errCh)
}
