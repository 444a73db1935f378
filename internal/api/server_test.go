package api

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/mirador-rul/internal/config"
)

type plannerStub struct {
	scored atomic.Int32
}

func (p *plannerStub) Score(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p.scored.Add(int32(len(req.GetFields())))
	return structpb.NewStruct(map[string]any{"rows": []any{}})
}

func (p *plannerStub) GetParameterTable(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"entries": []any{}})
}

func TestServerRoundTrip(t *testing.T) {
	stub := &plannerStub{}
	server, err := NewServer(config.ServerConfig{Address: "127.0.0.1:0", GracefulTimeout: time.Second}, stub)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	go func() { _ = server.Start() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), server.GracefulTimeout())
		defer cancel()
		server.Shutdown(ctx)
	})

	conn, err := grpc.NewClient(server.Address(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := NewPlannerClient(conn)
	req, _ := structpb.NewStruct(map[string]any{"observations": []any{}})
	resp, err := client.Score(ctx, req)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if _, ok := resp.GetFields()["rows"]; !ok {
		t.Fatalf("expected rows in response: %v", resp)
	}
	if stub.scored.Load() != 1 {
		t.Fatalf("expected planner to receive the request")
	}

	if _, err := client.GetParameterTable(ctx, &emptypb.Empty{}); err != nil {
		t.Fatalf("get parameter table: %v", err)
	}

	health, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: PlannerServiceName})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if health.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("unexpected health status: %v", health.GetStatus())
	}
}

func TestNewServerRejectsBadAddress(t *testing.T) {
	if _, err := NewServer(config.ServerConfig{Address: "256.0.0.1:bad"}, &plannerStub{}); err == nil {
		t.Fatalf("expected listen error")
	}
}
