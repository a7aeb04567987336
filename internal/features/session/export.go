package session

import (
	"context"
	"fmt"

	common_models "eduvibe/internal/common/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sessions"

var exportColumns = []string{
	"Session ID", "Scheduled (UTC)", "Subject", "Student", "Mentor",
	"Duration (min)", "Price", "Status", "Payment", "Reason",
}

// Export renders the filtered sessions as an XLSX workbook.
func (s *SessionServiceImpl) Export(ctx context.Context, filter ListFilter) ([]byte, error) {
	sessions, _, err := s.Repo.List(ctx, filter, 0, 0)
	if err != nil {
		return nil, err
	}

	data, err := WriteWorkbook(sessions)
	if err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionExport, "sessions", "", map[string]common_models.Change{
		"rows": {New: len(sessions)},
	})
	return data, nil
}

func WriteWorkbook(sessions []Session) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, col)
		f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for rowIdx, sess := range sessions {
		row := []interface{}{
			sess.ID.Hex(),
			sess.ScheduledAt.UTC().Format("2006-01-02 15:04"),
			sess.Subject,
			sess.StudentName,
			sess.MentorName,
			sess.DurationMinutes,
			fmt.Sprintf("%.2f", float64(sess.PriceCents)/100),
			string(sess.Status),
			string(sess.PaymentStatus),
			sess.StatusReason,
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	for i := range exportColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(exportSheet, col, col, 18)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
