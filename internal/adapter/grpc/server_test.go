package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/fundflow-backend/internal/domain"
	"github.com/simaogato/fundflow-backend/internal/usecase/fund"
)

// memRunRepository is an in-memory RunRepository
type memRunRepository struct {
	mu    sync.Mutex
	runs  map[uuid.UUID]*domain.ProjectionRun
	order []uuid.UUID // insertion order
}

func (r *memRunRepository) Create(ctx context.Context, run *domain.ProjectionRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = run
	r.order = append(r.order, run.ID)
	return nil
}

func (r *memRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectionRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}
	return run, nil
}

func (r *memRunRepository) List(ctx context.Context, limit, offset int) ([]*domain.ProjectionRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ProjectionRun
	for i := len(r.order) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		header := *r.runs[r.order[i]]
		header.Portfolio, header.Ledger, header.Accounts, header.Properties = nil, nil, nil, nil
		out = append(out, &header)
	}
	return out, nil
}

var testSecret = []byte("bufconn-secret")

func startServer(t *testing.T) *grpc.ClientConn {
	t.Helper()
	logger, _ := logtest.NewNullLogger()

	repo := &memRunRepository{runs: make(map[uuid.UUID]*domain.ProjectionRun)}
	service := fund.NewService(repo, nil, logger)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(AuthInterceptor(testSecret, logger)))
	RegisterProjectionServiceServer(srv, NewServer(service, logger))
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func authed(t *testing.T) context.Context {
	t.Helper()
	token, err := IssueToken(testSecret, "test", time.Hour)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func scenarioRequest(t *testing.T, overrides map[string]any) *structpb.Struct {
	t.Helper()
	assumptions := map[string]any{
		"vacancy_rate":          0.05,
		"maintenance_ratio":     0.08,
		"management_ratio":      0.08,
		"insurance_rate":        0.002,
		"rent_growth":           0.02,
		"appreciation":          0.025,
		"disposition_cost_rate": 0.01,
		"ltv":                   0.75,
		"interest_rate":         "0.046",
		"amortization_periods":  25,
		"hold_periods":          5,
		"management_fee_rate":   0.02,
		"preferred_rate":        0.08,
		"promote_rate":          0.2,
		"lp_capital":            131250,
		"gp_capital":            43750,
	}
	for k, v := range overrides {
		assumptions[k] = v
	}
	req, err := structpb.NewStruct(map[string]any{
		"name":        "bufconn duplex",
		"assumptions": assumptions,
		"properties": []any{
			map[string]any{
				"name":                     "Hamilton duplex",
				"purchase_price":           700000,
				"starting_rent":            4000,
				"rent_payments_per_period": 12,
			},
		},
	})
	require.NoError(t, err)
	return req
}

func TestProjectionService_RoundTrip(t *testing.T) {
	conn := startServer(t)
	ctx := authed(t)

	out := new(structpb.Struct)
	err := conn.Invoke(ctx, RunProjectionMethod, scenarioRequest(t, nil), out)
	require.NoError(t, err)

	fields := out.GetFields()
	assert.Equal(t, "bufconn duplex", fields["name"].GetStringValue())
	assert.Equal(t, float64(5), fields["periods"].GetNumberValue())
	assert.Equal(t, "175000", fields["total_equity"].GetStringValue())

	irr, err := strconv.ParseFloat(fields["fund"].GetStructValue().GetFields()["irr"].GetStringValue(), 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, irr, 0.08)
	assert.LessOrEqual(t, irr, 0.12)

	distributions := fields["distributions"].GetListValue().GetValues()
	require.NotEmpty(t, distributions)
	assert.Equal(t, "capital_call", distributions[0].GetStructValue().GetFields()["tier"].GetStringValue())

	// Stored runs come back through GetRun
	id := fields["id"].GetStringValue()
	req, err := structpb.NewStruct(map[string]any{"id": id})
	require.NoError(t, err)

	fetched := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, GetRunMethod, req, fetched))
	assert.Equal(t, id, fetched.GetFields()["id"].GetStringValue())
	assert.Equal(t, "bufconn duplex", fetched.GetFields()["name"].GetStringValue())
}

func TestProjectionService_ListRuns(t *testing.T) {
	conn := startServer(t)
	ctx := authed(t)

	var ids []string
	for _, name := range []string{"first", "second", "third"} {
		req := scenarioRequest(t, nil)
		req.Fields["name"] = structpb.NewStringValue(name)
		out := new(structpb.Struct)
		require.NoError(t, conn.Invoke(ctx, RunProjectionMethod, req, out))
		ids = append(ids, out.GetFields()["id"].GetStringValue())
	}

	page := func(t *testing.T, fields map[string]any) []*structpb.Value {
		t.Helper()
		req, err := structpb.NewStruct(fields)
		require.NoError(t, err)
		out := new(structpb.Struct)
		require.NoError(t, conn.Invoke(ctx, ListRunsMethod, req, out))
		return out.GetFields()["runs"].GetListValue().GetValues()
	}

	all := page(t, map[string]any{})
	require.Len(t, all, 3, "no limit uses the default page size")
	assert.Equal(t, ids[2], all[0].GetStructValue().GetFields()["id"].GetStringValue(), "newest first")
	assert.Equal(t, "175000", all[0].GetStructValue().GetFields()["total_equity"].GetStringValue())
	_, hasLedger := all[0].GetStructValue().GetFields()["distributions"]
	assert.False(t, hasLedger, "headers only")

	second := page(t, map[string]any{"limit": 1, "offset": 1})
	require.Len(t, second, 1)
	assert.Equal(t, ids[1], second[0].GetStructValue().GetFields()["id"].GetStringValue())
	assert.Equal(t, "second", second[0].GetStructValue().GetFields()["name"].GetStringValue())
}

func TestProjectionService_Errors(t *testing.T) {
	conn := startServer(t)

	unknownID, err := structpb.NewStruct(map[string]any{"id": uuid.NewString()})
	require.NoError(t, err)
	badID, err := structpb.NewStruct(map[string]any{"id": "42"})
	require.NoError(t, err)
	negativeOffset, err := structpb.NewStruct(map[string]any{"offset": -1})
	require.NoError(t, err)
	fractionalLimit, err := structpb.NewStruct(map[string]any{"limit": 2.5})
	require.NoError(t, err)
	unknownKey := scenarioRequest(t, nil)
	unknownKey.Fields["colour"] = structpb.NewStringValue("blue")

	tests := []struct {
		name   string
		ctx    context.Context
		method string
		req    *structpb.Struct
		code   codes.Code
		errMsg string
	}{
		{name: "invalid promote", ctx: authed(t), method: RunProjectionMethod, req: scenarioRequest(t, map[string]any{"promote_rate": 1}), code: codes.InvalidArgument, errMsg: "promote_rate"},
		{name: "unknown key", ctx: authed(t), method: RunProjectionMethod, req: unknownKey, code: codes.InvalidArgument, errMsg: "colour"},
		{name: "unknown run", ctx: authed(t), method: GetRunMethod, req: unknownID, code: codes.NotFound, errMsg: "not found"},
		{name: "malformed id", ctx: authed(t), method: GetRunMethod, req: badID, code: codes.InvalidArgument, errMsg: "invalid id"},
		{name: "negative offset", ctx: authed(t), method: ListRunsMethod, req: negativeOffset, code: codes.InvalidArgument, errMsg: "offset"},
		{name: "fractional limit", ctx: authed(t), method: ListRunsMethod, req: fractionalLimit, code: codes.InvalidArgument, errMsg: "limit"},
		{name: "no token", ctx: context.Background(), method: RunProjectionMethod, req: scenarioRequest(t, nil), code: codes.Unauthenticated, errMsg: "authorization"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := conn.Invoke(tt.ctx, tt.method, tt.req, new(structpb.Struct))
			require.Error(t, err)
			st, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
			assert.Contains(t, st.Message(), tt.errMsg)
		})
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{name: "validation", err: domain.NewValidationError("waterfall", "promote_rate", 1, "must be in [0,1)"), code: codes.InvalidArgument},
		{name: "wrapped validation", err: fmt.Errorf("run x: %w", domain.ErrInvalidInput), code: codes.InvalidArgument},
		{name: "not found", err: fmt.Errorf("run x: %w", domain.ErrNotFound), code: codes.NotFound},
		{name: "deadline", err: context.DeadlineExceeded, code: codes.DeadlineExceeded},
		{name: "anything else", err: errors.New("disk full"), code: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, ok := status.FromError(mapError(tt.err))
			require.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
		})
	}

	assert.NoError(t, mapError(nil))
}
