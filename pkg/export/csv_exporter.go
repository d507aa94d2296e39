package export

import (
	"fmt"

	"github.com/gocarina/gocsv"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/models"
)

// CSVExporter renders ranked timetables into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes, one row per selected course.
func (e *CSVExporter) Render(solutions []models.TimetableSolution) ([]byte, error) {
	rows := Rows(solutions)
	if len(rows) == 0 {
		return nil, fmt.Errorf("nothing to export")
	}
	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return nil, fmt.Errorf("marshal timetable csv: %w", err)
	}
	return []byte(out), nil
}
