package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"gridbench/pkg/domain"
)

// CSVHeader колонки CSV отчёта
var CSVHeader = []string{
	"Scenario_Name", "Grid_Dims", "Start_Pos", "Goal_Pos", "Scenario_Seed", "Obstacle_Density",
	"Algorithm", "Beam_Width", "Path_Found", "Path_Score", "Nodes_Processed", "Time_s", "Limit_Reached",
}

// CSVGenerator одна строка на запуск алгоритма
type CSVGenerator struct{}

// NewCSVGenerator создаёт генератор
func NewCSVGenerator() *CSVGenerator {
	return &CSVGenerator{}
}

func (g *CSVGenerator) Format() Format { return FormatCSV }

// csvWriter запоминает первую ошибку записи
type csvWriter struct {
	w   *csv.Writer
	err error
}

func (cw *csvWriter) Write(record []string) {
	if cw.err != nil {
		return
	}
	cw.err = cw.w.Write(record)
}

func (cw *csvWriter) Flush() error {
	if cw.err != nil {
		return cw.err
	}
	cw.w.Flush()
	return cw.w.Error()
}

// Generate пишет заголовок и строки в порядке сценариев: A*, затем beam по ширинам.
// Строки завершаются CRLF.
func (g *CSVGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	cw := &csvWriter{w: w}

	cw.Write(CSVHeader)
	for _, s := range data.Scenarios {
		if s.AStar != nil {
			cw.Write(CSVRow(s, s.AStar))
		}
		for _, b := range s.Beams {
			cw.Write(CSVRow(s, b.Result))
		}
	}

	if err := cw.Flush(); err != nil {
		return nil, fmt.Errorf("csv write error: %w", err)
	}
	return buf.Bytes(), nil
}

// CSVRow строка одного запуска
func CSVRow(s *ScenarioResult, r *domain.SearchResult) []string {
	width := "N/A"
	if r.Algorithm == domain.AlgorithmBeam {
		width = strconv.Itoa(r.BeamWidth)
	}

	return []string{
		s.Name,
		s.GridDims(),
		s.Start.String(),
		s.Goal.String(),
		strconv.FormatInt(s.Seed, 10),
		fmt.Sprintf("%.2f", s.Density),
		r.Label(),
		width,
		yesNo(r.Found()),
		scoreOrNA(r),
		strconv.Itoa(r.NodesProcessed),
		seconds(r.Elapsed),
		yesNo(r.LimitReached),
	}
}
