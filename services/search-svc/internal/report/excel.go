package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"gridbench/pkg/domain"
)

const (
	sheetResults  = "Results"
	sheetSummary  = "Summary"
	sheetVerdicts = "Verdicts"
)

// ExcelGenerator книга с листами результатов, сводки и вердиктов
type ExcelGenerator struct{}

// NewExcelGenerator создаёт генератор
func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

func (g *ExcelGenerator) Format() Format { return FormatExcel }

// Generate генерирует xlsx
func (g *ExcelGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("excel style: %w", err)
	}

	for _, name := range []string{sheetResults, sheetSummary, sheetVerdicts} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("excel sheet %s: %w", name, err)
		}
	}
	// Удаляем дефолтный лист
	f.DeleteSheet("Sheet1")

	g.writeResults(f, data, headerStyle)
	g.writeSummary(f, data, headerStyle)
	g.writeVerdicts(f, data, headerStyle)

	if idx, err := f.GetSheetIndex(sheetResults); err == nil {
		f.SetActiveSheet(idx)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeResults повторяет колонки CSV, но с типизированными ячейками
func (g *ExcelGenerator) writeResults(f *excelize.File, data *ReportData, headerStyle int) {
	for i, h := range CSVHeader {
		f.SetCellValue(sheetResults, cellAddr(colName(i), 1), h)
	}
	f.SetCellStyle(sheetResults, "A1", cellAddr(colName(len(CSVHeader)-1), 1), headerStyle)

	row := 2
	for _, s := range data.Scenarios {
		for _, r := range s.Results() {
			vals := []interface{}{
				s.Name,
				s.GridDims(),
				s.Start.String(),
				s.Goal.String(),
				s.Seed,
				s.Density,
				r.Label(),
				beamWidthCell(r),
				yesNo(r.Found()),
				costCell(r),
				r.NodesProcessed,
				r.Elapsed.Seconds(),
				yesNo(r.LimitReached),
			}
			for i, v := range vals {
				f.SetCellValue(sheetResults, cellAddr(colName(i), row), v)
			}
			row++
		}
	}
	f.SetColWidth(sheetResults, "A", "A", 42)
	f.SetColWidth(sheetResults, "B", "M", 16)
}

func (g *ExcelGenerator) writeSummary(f *excelize.File, data *ReportData, headerStyle int) {
	row := 1
	f.SetCellValue(sheetSummary, cellAddr("A", row), data.title())
	f.MergeCell(sheetSummary, cellAddr("A", row), cellAddr("H", row))
	row += 2

	if data.RunID != "" {
		f.SetCellValue(sheetSummary, cellAddr("A", row), "Run ID")
		f.SetCellValue(sheetSummary, cellAddr("B", row), data.RunID)
		row++
	}
	f.SetCellValue(sheetSummary, cellAddr("A", row), "Scenarios")
	f.SetCellValue(sheetSummary, cellAddr("B", row), len(data.Scenarios))
	row++
	f.SetCellValue(sheetSummary, cellAddr("A", row), "Max nodes A*")
	f.SetCellValue(sheetSummary, cellAddr("B", row), data.MaxNodesAStar)
	row++
	f.SetCellValue(sheetSummary, cellAddr("A", row), "Max nodes Beam")
	f.SetCellValue(sheetSummary, cellAddr("B", row), data.MaxNodesBeam)
	row += 2

	headers := []string{"Algorithm", "Runs", "Found", "Success Rate", "Limit Reached", "Avg Cost", "Avg Nodes", "Avg Time (s)"}
	for i, h := range headers {
		f.SetCellValue(sheetSummary, cellAddr(colName(i), row), h)
	}
	f.SetCellStyle(sheetSummary, cellAddr("A", row), cellAddr(colName(len(headers)-1), row), headerStyle)
	row++

	for _, st := range data.Statistics() {
		f.SetCellValue(sheetSummary, cellAddr("A", row), st.Label)
		f.SetCellValue(sheetSummary, cellAddr("B", row), st.Runs)
		f.SetCellValue(sheetSummary, cellAddr("C", row), st.Found)
		f.SetCellValue(sheetSummary, cellAddr("D", row), st.SuccessRate())
		f.SetCellValue(sheetSummary, cellAddr("E", row), st.LimitReached)
		f.SetCellValue(sheetSummary, cellAddr("F", row), st.AverageCost)
		f.SetCellValue(sheetSummary, cellAddr("G", row), st.AverageNodes)
		f.SetCellValue(sheetSummary, cellAddr("H", row), st.AverageElapsed.Seconds())
		row++
	}
	f.SetColWidth(sheetSummary, "A", "A", 24)
}

func (g *ExcelGenerator) writeVerdicts(f *excelize.File, data *ReportData, headerStyle int) {
	f.SetCellValue(sheetVerdicts, "A1", "Verdict")
	f.SetCellValue(sheetVerdicts, "B1", "Description")
	f.SetCellValue(sheetVerdicts, "C1", "Count")
	f.SetCellStyle(sheetVerdicts, "A1", "C1", headerStyle)

	counts := data.Verdicts()
	for i, v := range verdictOrder {
		row := i + 2
		f.SetCellValue(sheetVerdicts, cellAddr("A", row), string(v))
		f.SetCellValue(sheetVerdicts, cellAddr("B", row), v.Describe())
		f.SetCellValue(sheetVerdicts, cellAddr("C", row), counts[v])
	}
	f.SetColWidth(sheetVerdicts, "B", "B", 48)
}

func beamWidthCell(r *domain.SearchResult) interface{} {
	if r.Algorithm == domain.AlgorithmBeam {
		return r.BeamWidth
	}
	return "N/A"
}

func costCell(r *domain.SearchResult) interface{} {
	if r.Found() {
		return r.Cost
	}
	return "N/A"
}

func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// colName имя колонки по индексу с нуля; до 26 колонок
func colName(i int) string {
	return string(rune('A' + i))
}
