package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/fundflow-backend/internal/adapter/scenario"
	"github.com/simaogato/fundflow-backend/internal/domain"
	"github.com/simaogato/fundflow-backend/internal/usecase/fund"
)

// Server implements the ProjectionService gRPC server
type Server struct {
	FundService *fund.Service
	Logger      *logrus.Logger
}

// NewServer creates a new gRPC server instance
func NewServer(fundService *fund.Service, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{
		FundService: fundService,
		Logger:      logger,
	}
}

// RunProjection handles the RunProjection RPC.
// The request has the layout of a scenario file; the response is the stored run.
func (s *Server) RunProjection(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	// JSON is a subset of YAML, so the scenario decoder reads the request as is
	body, err := protojson.Marshal(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	input, err := scenario.Parse(body)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, mapError(err)
		}
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}

	run, err := s.FundService.Run(ctx, input)
	if err != nil {
		s.Logger.WithError(err).Warn("RunProjection failed")
		return nil, mapError(err)
	}

	return toStruct(newRunView(run))
}

// GetRun handles the GetRun RPC: {"id": "<uuid>"}
func (s *Server) GetRun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uuid.Parse(req.GetFields()["id"].GetStringValue())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid id format: %v", err)
	}

	run, err := s.FundService.GetRun(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(newRunView(run))
}

// ListRuns handles the ListRuns RPC: {"limit": n, "offset": n}, newest first.
// A missing or zero limit uses the service default.
func (s *Server) ListRuns(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit, err := pageField(req, "limit")
	if err != nil {
		return nil, err
	}
	offset, err := pageField(req, "offset")
	if err != nil {
		return nil, err
	}

	runs, err := s.FundService.ListRuns(ctx, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}

	views := make([]runSummaryView, 0, len(runs))
	for _, run := range runs {
		views = append(views, newRunSummaryView(run))
	}
	return toStruct(listRunsView{Runs: views})
}

// pageField reads a non-negative whole number; absent means 0
func pageField(req *structpb.Struct, name string) (int, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, nil
	}
	n := v.GetNumberValue()
	if n < 0 || n != math.Trunc(n) {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a non-negative integer", name)
	}
	return int(n), nil
}

// runSummaryView is the wire layout of a run header; decimals travel as strings
type runSummaryView struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	CreatedAt        string          `json:"created_at"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	TotalEquity      decimal.Decimal `json:"total_equity"`
	GPFeesAndPromote decimal.Decimal `json:"gp_fees_and_promote"`
	Fund             metricsView     `json:"fund"`
	LP               metricsView     `json:"lp"`
	GP               metricsView     `json:"gp"`
}

// runView is a header plus the portfolio series and the ledger
type runView struct {
	runSummaryView
	Periods       int                `json:"periods"`
	Portfolio     []periodView       `json:"portfolio"`
	Distributions []distributionView `json:"distributions"`
}

type listRunsView struct {
	Runs []runSummaryView `json:"runs"`
}

type metricsView struct {
	IRR              *decimal.Decimal `json:"irr,omitempty"`
	IRRError         string           `json:"irr_error,omitempty"`
	EquityMultiple   decimal.Decimal  `json:"equity_multiple"`
	CashOnCash       decimal.Decimal  `json:"cash_on_cash"`
	TotalDistributed decimal.Decimal  `json:"total_distributed"`
	InitialOutlay    decimal.Decimal  `json:"initial_outlay"`
}

type periodView struct {
	Period            int             `json:"period"`
	OperatingCashFlow decimal.Decimal `json:"operating_cash_flow"`
	ManagementFee     decimal.Decimal `json:"management_fee"`
	NetCashFlow       decimal.Decimal `json:"net_cash_flow"`
	PropertyValue     decimal.Decimal `json:"property_value"`
}

type distributionView struct {
	Period int             `json:"period"`
	Tier   string          `json:"tier"`
	LP     decimal.Decimal `json:"lp"`
	GP     decimal.Decimal `json:"gp"`
}

func newRunSummaryView(run *domain.ProjectionRun) runSummaryView {
	return runSummaryView{
		ID:               run.ID.String(),
		Name:             run.Name,
		CreatedAt:        run.CreatedAt.UTC().Format(time.RFC3339),
		TotalCost:        run.TotalCost,
		TotalEquity:      run.TotalEquity,
		GPFeesAndPromote: run.GPFeesAndPromote,
		Fund:             newMetricsView(run.FundMetrics),
		LP:               newMetricsView(run.LPMetrics),
		GP:               newMetricsView(run.GPMetrics),
	}
}

func newRunView(run *domain.ProjectionRun) runView {
	view := runView{
		runSummaryView: newRunSummaryView(run),
		Periods:        run.Periods(),
		Portfolio:      make([]periodView, 0, len(run.Portfolio)),
		Distributions:  make([]distributionView, 0, len(run.Ledger)),
	}
	for _, p := range run.Portfolio {
		view.Portfolio = append(view.Portfolio, periodView{
			Period:            p.Period,
			OperatingCashFlow: p.OperatingCashFlow,
			ManagementFee:     p.ManagementFee,
			NetCashFlow:       p.NetCashFlow,
			PropertyValue:     p.PropertyValue,
		})
	}
	for _, e := range run.Ledger {
		view.Distributions = append(view.Distributions, distributionView{
			Period: e.Period,
			Tier:   string(e.Tier),
			LP:     e.LP,
			GP:     e.GP,
		})
	}
	return view
}

func newMetricsView(m domain.ReturnMetrics) metricsView {
	view := metricsView{
		IRR:              m.IRR,
		EquityMultiple:   m.EquityMultiple,
		CashOnCash:       m.CashOnCash,
		TotalDistributed: m.TotalDistributed,
		InitialOutlay:    m.InitialOutlay,
	}
	if m.IRRError != nil {
		view.IRRError = m.IRRError.Error()
	}
	return view
}

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// mapError maps domain errors to gRPC status codes
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Errorf(codes.InvalidArgument, "%s", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s", err.Error())
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s", err.Error())
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", err.Error())
}
