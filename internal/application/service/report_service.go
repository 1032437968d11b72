package service

import (
	"context"
	"fmt"

	"github.com/provalon/quality-engine/internal/application/port"
	"github.com/provalon/quality-engine/internal/domain/entity"
	"github.com/provalon/quality-engine/internal/domain/qerrors"
	"github.com/provalon/quality-engine/internal/domain/status"
)

// ReportWriter renders an audit-trail workbook. Implemented by the
// infrastructure layer; the service only assembles the data.
type ReportWriter interface {
	WriteAuditTrail(history []*entity.StatusHistoryEntry, ncrs []*entity.NCR) ([]byte, error)
}

// ReportService produces compliance exports for regulator handoff.
type ReportService interface {
	// AuditTrail builds a workbook with the entity's full status history and
	// the org's NCR register.
	AuditTrail(ctx context.Context, orgID string, entityType status.EntityType, entityID string) ([]byte, error)
}

type reportServiceImpl struct {
	historyRepo port.HistoryRepository
	ncrRepo     port.NCRRepository
	writer      ReportWriter
	fetchLimit  int
	logger      Logger
}

// NewReportService creates a ReportService. fetchLimit caps how many rows a
// single export pulls from each table.
func NewReportService(historyRepo port.HistoryRepository, ncrRepo port.NCRRepository, writer ReportWriter, fetchLimit int, logger Logger) ReportService {
	if fetchLimit <= 0 {
		fetchLimit = 1000
	}
	return &reportServiceImpl{
		historyRepo: historyRepo,
		ncrRepo:     ncrRepo,
		writer:      writer,
		fetchLimit:  fetchLimit,
		logger:      logger,
	}
}

func (s *reportServiceImpl) AuditTrail(ctx context.Context, orgID string, entityType status.EntityType, entityID string) ([]byte, error) {
	if !entityType.IsValid() {
		return nil, &qerrors.ValidationError{Errors: []string{fmt.Sprintf("Invalid entity type: %s", entityType)}}
	}

	history, err := s.historyRepo.ListByEntity(ctx, orgID, entityType, entityID, s.fetchLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	ncrs, err := s.ncrRepo.List(ctx, orgID, s.fetchLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("fetch ncr register: %w", err)
	}

	data, err := s.writer.WriteAuditTrail(history, ncrs)
	if err != nil {
		return nil, fmt.Errorf("write audit trail: %w", err)
	}

	s.logger.Info("Audit trail exported",
		"entity_type", entityType.String(),
		"entity_id", entityID,
		"history_entries", len(history),
		"ncr_entries", len(ncrs))
	return data, nil
}
