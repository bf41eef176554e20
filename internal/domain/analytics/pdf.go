package analytics

import (
	"fmt"
	"io"
	"sort"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders the summary as a one page A4 report.
func WritePDF(w io.Writer, summary Summary, subjectName string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Performance summary", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Performance summary")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	if subjectName == "" {
		subjectName = summary.UserID
	}
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s", subjectName))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Generated: %s", summary.GeneratedAt.Format("2006-01-02 15:04 UTC")))
	pdf.Ln(10)

	section(pdf, "Goals")
	line(pdf, "Total", fmt.Sprintf("%d", summary.Goals.Total))
	line(pdf, "Completion rate", fmt.Sprintf("%.2f%%", summary.Goals.CompletionRate))
	line(pdf, "Average progress", fmt.Sprintf("%.2f%%", summary.Goals.AverageProgress))
	counts(pdf, summary.Goals.ByStatus)
	pdf.Ln(4)

	section(pdf, "Reviews")
	line(pdf, "Total", fmt.Sprintf("%d", summary.Reviews.Total))
	score := "n/a"
	if summary.Reviews.AverageScore != nil {
		score = fmt.Sprintf("%.2f / 5", *summary.Reviews.AverageScore)
	}
	line(pdf, "Average score", score)
	counts(pdf, summary.Reviews.ByStatus)
	counts(pdf, summary.Reviews.ByType)

	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
}

func line(pdf *gofpdf.Fpdf, label, value string) {
	pdf.CellFormat(60, 7, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
}

func counts(pdf *gofpdf.Fpdf, values map[string]int) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		line(pdf, "  "+k, fmt.Sprintf("%d", values[k]))
	}
}
