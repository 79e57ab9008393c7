package reports

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"workforce/internal/domain/compliance"
	"workforce/internal/domain/shifts"
)

// The core PDF fonts are Latin-1 only, so Polish diacritics are folded.
var pdfFold = strings.NewReplacer(
	"ą", "a", "ć", "c", "ę", "e", "ł", "l", "ń", "n", "ó", "o", "ś", "s", "ź", "z", "ż", "z",
	"Ą", "A", "Ć", "C", "Ę", "E", "Ł", "L", "Ń", "N", "Ó", "O", "Ś", "S", "Ź", "Z", "Ż", "Z",
)

func pdfText(s string) string {
	return pdfFold.Replace(s)
}

func newDocument(title string, generated time.Time) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, pdfText(title))
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, "Generated "+generated.Format("2006-01-02 15:04"))
	pdf.Ln(10)
	return pdf
}

func tableHeader(pdf *gofpdf.Fpdf, widths []float64, labels []string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, label := range labels {
		pdf.CellFormat(widths[i], 7, label, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
}

func buildCompliancePDF(dash Dashboard, attention []recordRow, now time.Time) *gofpdf.Fpdf {
	pdf := newDocument("Compliance report", now)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Records: %d   Valid: %d   Warning: %d   Expired: %d",
		dash.Counts.Total, dash.Counts.Valid, dash.Counts.Warning, dash.Counts.Expired))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Compliance rate: %s   Active employees: %d", dash.ComplianceRate, dash.Employees))
	pdf.Ln(10)

	keys := make([]string, 0, len(dash.ByType))
	for key := range dash.ByType {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	widths := []float64{80, 25, 25, 25, 25}
	tableHeader(pdf, widths, []string{"Type", "Total", "Valid", "Warning", "Expired"})
	for _, key := range keys {
		c := dash.ByType[key]
		pdf.CellFormat(widths[0], 6, pdfText(key), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprint(c.Total), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprint(c.Valid), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprint(c.Warning), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprint(c.Expired), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Needs attention")
	pdf.Ln(8)
	if len(attention) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 6, "All records are valid.")
		return pdf
	}
	widths = []float64{50, 55, 28, 25, 22}
	tableHeader(pdf, widths, []string{"Employee", "Record", "Expiry", "Status", "Days"})
	for _, row := range attention {
		pdf.CellFormat(widths[0], 6, pdfText(row.ref.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, pdfText(row.rec.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, row.rec.ExpiryDate.Format("2006-01-02"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, string(compliance.Classify(row.rec.ExpiryDate, now)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprint(compliance.DaysRemaining(row.rec.ExpiryDate, now)), "1", 1, "R", false, 0, "")
	}
	return pdf
}

func buildRosterPDF(department string, entries []shifts.RosterEntry, date time.Time) *gofpdf.Fpdf {
	year, week := shifts.ISOWeek(date)
	pdf := newDocument(fmt.Sprintf("Roster %s, week %d/%d", department, week, year), date)

	sorted := append([]shifts.RosterEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EmployeeName < sorted[j].EmployeeName
	})

	monday := shifts.WeekStart(date)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("%s - %s", monday.Format("2006-01-02"), monday.AddDate(0, 0, 6).Format("2006-01-02")))
	pdf.Ln(10)

	widths := []float64{80, 50, 50}
	tableHeader(pdf, widths, []string{"Employee", "Shift", "Hours"})
	for _, entry := range sorted {
		shiftName, hours := "unassigned", "-"
		if entry.Shift != nil {
			shiftName = entry.Shift.Name
			hours = entry.Shift.StartTime + " - " + entry.Shift.EndTime
		}
		pdf.CellFormat(widths[0], 6, pdfText(entry.EmployeeName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, pdfText(shiftName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, hours, "1", 1, "L", false, 0, "")
	}
	return pdf
}
