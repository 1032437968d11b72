package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/provalon/quality-engine/internal/application/service"
	"github.com/provalon/quality-engine/internal/domain/entity"
)

// ExcelWriter renders audit-trail workbooks for regulator handoff.
type ExcelWriter struct {
	logger *zap.Logger
}

// NewExcelWriter creates a new Excel report writer
func NewExcelWriter(logger *zap.Logger) *ExcelWriter {
	return &ExcelWriter{logger: logger}
}

const (
	historySheet = "Status History"
	ncrSheet     = "NCR Register"
	timeFormat   = "2006-01-02 15:04:05"
)

// WriteAuditTrail builds a two-sheet workbook: the entity's status history and
// the org's NCR register.
func (w *ExcelWriter) WriteAuditTrail(history []*entity.StatusHistoryEntry, ncrs []*entity.NCR) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeHistorySheet(f, history); err != nil {
		return nil, err
	}
	if err := w.writeNCRSheet(f, ncrs); err != nil {
		return nil, err
	}

	// drop the default sheet created by excelize
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	w.logger.Info("Audit trail workbook written",
		zap.Int("history_rows", len(history)),
		zap.Int("ncr_rows", len(ncrs)))
	return buf.Bytes(), nil
}

func (w *ExcelWriter) writeHistorySheet(f *excelize.File, history []*entity.StatusHistoryEntry) error {
	if _, err := f.NewSheet(historySheet); err != nil {
		return fmt.Errorf("failed to create history sheet: %w", err)
	}

	headers := []string{"Changed At", "Entity Type", "Entity ID", "From", "To", "Reason", "Inspection ID", "Changed By"}
	if err := w.writeRow(f, historySheet, 1, headers); err != nil {
		return err
	}

	for i, e := range history {
		row := []string{
			e.ChangedAt.Format(timeFormat),
			string(e.EntityType),
			e.EntityID,
			deref(e.FromStatus),
			e.ToStatus,
			deref(e.Reason),
			deref(e.InspectionID),
			e.ChangedByName,
		}
		if err := w.writeRow(f, historySheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *ExcelWriter) writeNCRSheet(f *excelize.File, ncrs []*entity.NCR) error {
	if _, err := f.NewSheet(ncrSheet); err != nil {
		return fmt.Errorf("failed to create ncr sheet: %w", err)
	}

	headers := []string{"Number", "Title", "Severity", "Status", "Created By", "Created At", "Closed By", "Closed At"}
	if err := w.writeRow(f, ncrSheet, 1, headers); err != nil {
		return err
	}

	for i, n := range ncrs {
		closedAt := ""
		if n.ClosedAt != nil {
			closedAt = n.ClosedAt.Format(timeFormat)
		}
		row := []string{
			n.Number,
			n.Title,
			n.Severity,
			n.Status,
			n.CreatedBy,
			n.CreatedAt.Format(timeFormat),
			deref(n.ClosedBy),
			closedAt,
		}
		if err := w.writeRow(f, ncrSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *ExcelWriter) writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d on %s: %w", row, sheet, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Verify interface compliance
var _ service.ReportWriter = (*ExcelWriter)(nil)
