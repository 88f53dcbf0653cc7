package tracing

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"beantrace/internal/domain"
)

// ContractReport resolves a sale contract and traces every one of its
// consumption lots, packaging the results into the export envelope.
func (s *Service) ContractReport(ctx context.Context, contract string, maxDepth int) (*domain.ContractReport, error) {
	contract = strings.TrimSpace(contract)
	lots, err := s.ResolveContract(ctx, contract)
	if err != nil {
		return nil, err
	}
	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	if maxDepth <= 0 {
		maxDepth = s.maxDepth
	}

	traces := make([]domain.TraceResult, 0, len(lots))
	totalTraced := 0
	for _, lot := range lots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := cur.session.Trace(lot, maxDepth)
		totalTraced += res.TotalNodesTraced
		traces = append(traces, *res)
	}

	avg := 0.0
	if len(traces) > 0 {
		avg = math.Round(float64(totalTraced)/float64(len(traces))*10) / 10
	}

	rep := &domain.ContractReport{
		SaleContract:   contract,
		ExportID:       uuid.NewString(),
		TraceTimestamp: time.Now().UTC(),
		Summary: domain.ReportSummary{
			ConsumptionLotsFound:   len(lots),
			TotalRelatedLotsTraced: totalTraced,
			AverageDepth:           avg,
			MaxDepthUsed:           maxDepth,
		},
		ConsumptionLots: lots,
		LineageTraces:   traces,
	}

	s.logger.Info("contract report built",
		"contract", contract,
		"lots", len(lots),
		"related", totalTraced)

	return rep, nil
}
