package payment

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// RenderReceipt draws a one-page A4 receipt for a settled payment.
func RenderReceipt(p *Payment) ([]byte, error) {
	if p.Status != StatusSucceeded {
		return nil, fmt.Errorf("payment %s is %s", p.ID.Hex(), p.Status)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetTitle("EduVibe receipt", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, "EduVibe", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 8, "Payment receipt", "", 1, "L", false, 0, "")
	pdf.Ln(6)

	paidAt := p.UpdatedAt
	if p.PaidAt != nil {
		paidAt = *p.PaidAt
	}
	rows := [][2]string{
		{"Receipt", p.ID.Hex()},
		{"Paid on", paidAt.UTC().Format("2 Jan 2006 15:04 MST")},
		{"Student", p.StudentName},
		{"Mentor", p.MentorName},
		{"Subject", p.Subject},
		{"Session", p.ScheduledAt.UTC().Format(time.RFC1123)},
		{"Reference", p.IntentID},
	}
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(40, 8, row[0], "B", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 8, pdf.UnicodeTranslatorFromDescriptor("")(row[1]), "B", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(40, 10, "Total", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 10, p.FormattedAmount(), "", 1, "R", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
