package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/models"
)

// PDFExporter renders ranked timetables into a tabular PDF, one section per
// timetable.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

var pdfColumns = []struct {
	title string
	width float64
}{
	{"ID", 18},
	{"Course", 52},
	{"Sec", 12},
	{"Cr", 10},
	{"Category", 36},
	{"Schedule", 62},
}

// Render creates a PDF document with a title page header and one table per
// timetable.
func (e *PDFExporter) Render(title string, solutions []models.TimetableSolution) ([]byte, error) {
	if len(solutions) == 0 {
		return nil, fmt.Errorf("nothing to export")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	for i, s := range solutions {
		pdf.SetFont("Arial", "B", 11)
		heading := fmt.Sprintf("Timetable %d  -  %d credits, %.1f%% of optimum, score %.2f",
			i+1, s.TotalCredits(), s.OptimalityPct, s.CombinedScore)
		pdf.CellFormat(0, 8, heading, "", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 9)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 8)
		for _, c := range s.Courses {
			values := []string{
				fmt.Sprint(c.ID),
				c.Name,
				c.Section,
				fmt.Sprint(c.Credits),
				c.Category.String(),
				FormatSchedule(c.Blocks),
			}
			for j, col := range pdfColumns {
				pdf.CellFormat(col.width, 6, values[j], "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
