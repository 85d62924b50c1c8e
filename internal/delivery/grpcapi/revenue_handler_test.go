package grpcapi

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type stubServer struct {
	UnimplementedRevenueServiceServer
	steps int
}

func (s *stubServer) Price(_ context.Context, r *PriceRequest) (*PriceResponse, error) {
	if r.RoomTypeID == "missing" {
		return nil, toStatus(domain.ErrRoomTypeNotFound)
	}
	resp := &PriceResponse{}
	resp.Price.RoomTypeID = r.RoomTypeID
	resp.Price.Date = r.Date
	resp.Price.PublishedRate = 280
	resp.Price.Source = string(domain.SourceEngine)
	return resp, nil
}

func (s *stubServer) Simulate(r *SimulateRequest, stream grpc.ServerStreamingServer[SimulationStep]) error {
	for i := 0; i < s.steps; i++ {
		if err := stream.Send(&SimulationStep{RoomTypeID: r.RoomTypeID, Date: r.From}); err != nil {
			return err
		}
	}
	return nil
}

func dialStub(t *testing.T, srv RevenueServiceServer) RevenueServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	RegisterRevenueServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewRevenueServiceClient(conn)
}

func TestRevenueService_JSONRoundTrip(t *testing.T) {
	client := dialStub(t, &stubServer{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Price(ctx, &PriceRequest{RoomTypeID: "DLX", Date: "2025-06-10"})
	require.NoError(t, err)
	assert.Equal(t, "DLX", resp.Price.RoomTypeID)
	assert.Equal(t, 280.0, resp.Price.PublishedRate)

	_, err = client.Price(ctx, &PriceRequest{RoomTypeID: "missing", Date: "2025-06-10"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.RunCycle(ctx, &RunCycleRequest{})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestRevenueService_SimulateStream(t *testing.T) {
	client := dialStub(t, &stubServer{steps: 3})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.Simulate(ctx, &SimulateRequest{RoomTypeID: "STD", From: "2025-06-10"})
	require.NoError(t, err)

	received := 0
	for {
		step, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, "STD", step.RoomTypeID)
		received++
	}
	assert.Equal(t, 3, received)
}

func TestToStatus(t *testing.T) {
	key := domain.Key{RoomTypeID: "DLX", Date: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)}
	cases := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"not found", domain.ErrNoCurrentPrice, codes.NotFound},
		{"configuration", domain.NewConfigurationError(key, domain.ErrMissingBaseRate), codes.FailedPrecondition},
		{"channel failure", &domain.SimulatedChannelFailure{Key: key, StatusCode: 503, Message: "Network timeout"}, codes.Unavailable},
		{"canceled", context.Canceled, codes.Canceled},
		{"internal", errors.New("boom"), codes.Internal},
		{"already status", status.Error(codes.InvalidArgument, "bad"), codes.InvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, status.Code(toStatus(tc.err)))
		})
	}
	assert.NoError(t, toStatus(nil))
}

func TestSimulateRequest_Overrides(t *testing.T) {
	r := &SimulateRequest{DemandMultiplier: 1.2}
	assert.Nil(t, r.Overrides().Channels)

	r.PreviewChannels = true
	o := r.Overrides()
	assert.NotNil(t, o.Channels)
	assert.Empty(t, o.Channels)

	r = &SimulateRequest{Channels: []string{"BOOKING_COM"}}
	assert.Equal(t, []string{"BOOKING_COM"}, r.Overrides().Channels)
}
