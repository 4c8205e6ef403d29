package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"gridbench/pkg/domain"
)

const scenarioSeparator = "\n" + "============================================================" + "\n"

// TextGenerator подробный лог эксперимента
type TextGenerator struct{}

// NewTextGenerator создаёт генератор
func NewTextGenerator() *TextGenerator {
	return &TextGenerator{}
}

func (g *TextGenerator) Format() Format { return FormatText }

// Generate пишет вступление, блок каждого сценария и заключение
func (g *TextGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	var buf bytes.Buffer
	WritePreamble(&buf, data)
	for _, s := range data.Scenarios {
		WriteScenario(&buf, data, s)
	}
	WriteClosing(&buf, data)
	return buf.Bytes(), nil
}

// textLog пишет сообщения построчно и запоминает первую ошибку
type textLog struct {
	w   io.Writer
	err error
}

func (l *textLog) line(format string, args ...any) {
	if l.err != nil {
		return
	}
	_, l.err = fmt.Fprintf(l.w, format+"\n", args...)
}

// WritePreamble первая строка лога
func WritePreamble(w io.Writer, data *ReportData) error {
	l := &textLog{w: w}
	l.line("Starting experiments. CSV results logged to %s, Verbose log to %s", data.CSVFile, data.TextFile)
	return l.err
}

// WriteClosing последняя строка лога
func WriteClosing(w io.Writer, data *ReportData) error {
	l := &textLog{w: w}
	l.line("\nAll scenarios processed. CSV log: %s, Verbose log: %s", data.CSVFile, data.TextFile)
	return l.err
}

// WriteScenario блок одного сценария. Используется и для вывода в консоль по ходу прогона.
func WriteScenario(w io.Writer, data *ReportData, s *ScenarioResult) error {
	l := &textLog{w: w}

	l.line("\n--- Scenario %d: %s ---", s.Index, s.Name)
	l.line("  Grid Dimensions: %s, Start: %s, Goal: %s\n"+
		"  Obstacle Density: %.1f%%, Scenario Seed: %d\n"+
		"  A* Node Limit: %d, Beam Search Node Limit: %d",
		s.GridDims(), s.Start, s.Goal, s.Density*100, s.Seed, data.MaxNodesAStar, data.MaxNodesBeam)

	if s.Err != "" {
		l.line("\n  Scenario failed: %s", s.Err)
	}

	if s.AStar != nil {
		l.line("\n  Running A*...")
		l.line("%s", resultBlock(s.AStar, "Nodes Explored", "explored", data.MaxNodesAStar))
	}

	for _, b := range s.Beams {
		l.line("\n  Running Beam Search (W=%d)...", b.Width)
		l.line("%s", resultBlock(b.Result, "Nodes Expanded from Beam", "expanded", data.MaxNodesBeam))
		l.line("      Comparison: %s", b.Verdict.Describe())
	}

	l.line("%s", scenarioSeparator)
	return l.err
}

func resultBlock(r *domain.SearchResult, nodesLabel, verb string, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "    [%s Results]\n", r.Label())
	fmt.Fprintf(&b, "      Path Found: %s\n", yesNo(r.Found()))
	if r.Found() {
		fmt.Fprintf(&b, "      Path Score (Cost): %d\n", r.Cost)
	}
	fmt.Fprintf(&b, "      %s: %d\n", nodesLabel, r.NodesProcessed)
	fmt.Fprintf(&b, "      Wall Clock Time: %s seconds\n", seconds(r.Elapsed))
	if r.LimitReached {
		fmt.Fprintf(&b, "      Termination: Max nodes %s limit (%d) reached.\n", verb, limit)
	}
	return b.String()
}
