package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/shenprabu/FileReadAI/constants"
	"github.com/shenprabu/FileReadAI/internal/fields"
)

func sampleData() fields.ExtractedData {
	return fields.ExtractedData{
		FormTitle:   "Registration Form",
		ExtractedAt: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		Fields: []fields.Field{
			{
				ID: "field-1-1", Label: "Full Name", Value: "Doe, Jane",
				Type: constants.Text, Confidence: 0.92, Verified: true, Page: 1,
				BoundingBox: &fields.BoundingBox{X: 0.1, Y: 0.2, Width: 0.3, Height: 0.05},
			},
			{
				ID: "field-1-2", Label: "Notes", Value: `said "urgent"`,
				Type: constants.Textarea, Confidence: 0.71, Page: 1,
			},
			{
				ID: "field-2-1", Label: "Country", Value: "DE",
				Type: constants.Select, Confidence: 0.85, Page: 2,
			},
		},
	}
}

func TestToCSVEmptyCollection(t *testing.T) {
	s := NewService(nil)
	out, err := s.ToCSV(fields.ExtractedData{})
	require.NoError(t, err)
	assert.Equal(t, NoDataSentinel, out)
}

func TestToCSVRows(t *testing.T) {
	s := NewService(nil)
	out, err := s.ToCSV(sampleData())
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"Label", "Value", "Type", "Confidence", "Verified"}, records[0])
	assert.Equal(t, []string{"Full Name", "Doe, Jane", "text", "0.92", "true"}, records[1])
	assert.Equal(t, []string{"Notes", `said "urgent"`, "textarea", "0.71", "false"}, records[2])
	assert.Equal(t, []string{"Country", "DE", "select", "0.85", "false"}, records[3])
}

func TestToJSONRoundTrip(t *testing.T) {
	s := NewService(nil)
	data := sampleData()

	out, err := s.ToJSON(data)
	require.NoError(t, err)

	var back fields.ExtractedData
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, data.FormTitle, back.FormTitle)
	require.Len(t, back.Fields, 3)
	assert.Equal(t, data.Fields[0], back.Fields[0])
	require.NotNil(t, back.Fields[0].BoundingBox)
	assert.Equal(t, 0.3, back.Fields[0].BoundingBox.Width)
	assert.True(t, data.ExtractedAt.Equal(back.ExtractedAt))
}

func TestToXLSXCells(t *testing.T) {
	s := NewService(nil)
	out, err := s.ToXLSX(sampleData())
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer wb.Close()

	get := func(cell string) string {
		v, err := wb.GetCellValue("Fields", cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Label", get("A1"))
	assert.Equal(t, "Page", get("F1"))
	assert.Equal(t, "Full Name", get("A2"))
	assert.Equal(t, "Doe, Jane", get("B2"))
	assert.Equal(t, "text", get("C2"))
	assert.Equal(t, "TRUE", strings.ToUpper(get("E2")))
	assert.Equal(t, "2", get("F4"))
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "visa-application_extracted_2026-03-14.csv", Filename("visa-application.pdf", "csv", at))
	assert.Equal(t, "scan_extracted_2026-03-14.xlsx", Filename("scan.png", ".xlsx", at))
	assert.Equal(t, "noext_extracted_2026-03-14.json", Filename("noext", "json", at))
}
