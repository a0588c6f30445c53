package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/shenprabu/FileReadAI/internal/fields"
)

// NoDataSentinel is returned for delimited exports of an empty field
// collection instead of a header-only table.
const NoDataSentinel = "No data to export"

// Service serializes an extracted field collection into transportable
// formats.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ToJSON produces a lossless round-trip representation of the full
// collection, every field attribute preserved.
func (s *Service) ToJSON(data fields.ExtractedData) ([]byte, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal extracted data: %w", err)
	}
	s.logger.Info("export.json.ok", "fields", len(data.Fields), "bytes", len(out))
	return out, nil
}

// ToCSV renders the header row and one quoted row per field, in field
// order. An empty collection yields the no-data sentinel rather than a
// degenerate table.
func (s *Service) ToCSV(data fields.ExtractedData) (string, error) {
	if len(data.Fields) == 0 {
		return NoDataSentinel, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Label", "Value", "Type", "Confidence", "Verified"}); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, f := range data.Fields {
		row := []string{
			f.Label,
			f.Value,
			string(f.Type),
			strconv.FormatFloat(f.Confidence, 'f', 2, 64),
			strconv.FormatBool(f.Verified),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	s.logger.Info("export.csv.ok", "fields", len(data.Fields), "bytes", buf.Len())
	return buf.String(), nil
}

// ToXLSX returns a spreadsheet workbook (as bytes) with one row per
// field plus title and timestamp metadata.
func (s *Service) ToXLSX(data fields.ExtractedData) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Fields"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{"Label", "Value", "Type", "Confidence", "Verified", "Page"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, fl := range data.Fields {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, fl.Label)
		write(2, fl.Value)
		write(3, string(fl.Type))
		write(4, fl.Confidence)
		write(5, fl.Verified)
		write(6, fl.Page)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 28) // label
	_ = f.SetColWidth(sheet, "B", "B", 40) // value
	_ = f.SetColWidth(sheet, "C", "C", 12) // type
	_ = f.SetColWidth(sheet, "D", "F", 11)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok", "fields", len(data.Fields), "bytes", buf.Len())
	return buf.Bytes(), nil
}

// Filename builds the export artifact name:
// <basefilename>_extracted_<ISO-date>.<ext>
func Filename(sourceFilename, ext string, at time.Time) string {
	base := sourceFilename
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return fmt.Sprintf("%s_extracted_%s.%s", base, at.UTC().Format("2006-01-02"), strings.TrimPrefix(ext, "."))
}
