package report

import (
	"context"
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appconfig "gridbench/pkg/config"
	"gridbench/pkg/domain"
)

// PDFGenerator сводный PDF отчёт
type PDFGenerator struct {
	cfg appconfig.PDFConfig
}

// NewPDFGenerator создаёт генератор с полями 15 мм и нумерацией страниц
func NewPDFGenerator() *PDFGenerator {
	return NewPDFGeneratorWithConfig(appconfig.PDFConfig{
		MarginTop:         15,
		MarginLeft:        15,
		MarginRight:       15,
		EnablePageNumbers: true,
	})
}

// NewPDFGeneratorWithConfig создаёт генератор с настройками страницы
func NewPDFGeneratorWithConfig(cfg appconfig.PDFConfig) *PDFGenerator {
	return &PDFGenerator{cfg: cfg}
}

func (g *PDFGenerator) Format() Format { return FormatPDF }

var (
	primaryColor   = &props.Color{Red: 52, Green: 152, Blue: 219}  // #3498db
	headerBgColor  = &props.Color{Red: 44, Green: 62, Blue: 80}    // #2c3e50
	successColor   = &props.Color{Red: 39, Green: 174, Blue: 96}   // #27ae60
	warningColor   = &props.Color{Red: 243, Green: 156, Blue: 18}  // #f39c12
	dangerColor    = &props.Color{Red: 231, Green: 76, Blue: 60}   // #e74c3c
	lightGrayColor = &props.Color{Red: 236, Green: 240, Blue: 241} // #ecf0f1
	darkGrayColor  = &props.Color{Red: 127, Green: 140, Blue: 141} // #7f8c8d

	titleStyle = props.Text{
		Size:  20,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: headerBgColor,
	}

	h2Style = props.Text{
		Size:  14,
		Style: fontstyle.Bold,
		Color: headerBgColor,
		Top:   5,
	}

	h3Style = props.Text{
		Size:  11,
		Style: fontstyle.Bold,
		Color: darkGrayColor,
		Top:   3,
	}

	smallStyle = props.Text{
		Size:  8,
		Color: darkGrayColor,
	}

	metricValueStyle = props.Text{
		Size:  18,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: primaryColor,
	}

	metricLabelStyle = props.Text{
		Size:  9,
		Align: align.Center,
		Color: darkGrayColor,
		Top:   9,
	}

	tableHeaderStyle = &props.Cell{
		BackgroundColor: primaryColor,
	}

	tableHeaderTextStyle = props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
		Align: align.Center,
	}

	tableCellStyle = &props.Cell{
		BorderType:  border.Bottom,
		BorderColor: lightGrayColor,
	}

	tableCellTextStyle = props.Text{
		Size:  8,
		Align: align.Center,
	}
)

// Generate генерирует PDF
func (g *PDFGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	b := config.NewBuilder().
		WithLeftMargin(g.cfg.MarginLeft).
		WithTopMargin(g.cfg.MarginTop).
		WithRightMargin(g.cfg.MarginRight)
	if g.cfg.EnablePageNumbers {
		b = b.WithPageNumber()
	}

	m := maroto.New(b.Build())

	g.addHeader(m, data)
	g.addOverview(m, data)
	g.addStatistics(m, data)
	g.addVerdicts(m, data)
	g.addScenarios(m, data)
	g.addFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *PDFGenerator) addHeader(m core.Maroto, data *ReportData) {
	m.AddRow(15,
		text.NewCol(12, data.title(), titleStyle),
	)
	m.AddRow(5,
		line.NewCol(12),
	)

	author := data.Author
	if author == "" {
		author = "gridbench"
	}
	m.AddRow(6,
		text.NewCol(6, fmt.Sprintf("Author: %s", author), smallStyle),
		text.NewCol(6, fmt.Sprintf("Generated: %s", generatedAt(data).Format("2006-01-02 15:04:05")),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Right}),
	)
	if data.RunID != "" {
		m.AddRow(5,
			text.NewCol(12, fmt.Sprintf("Run: %s", data.RunID), smallStyle),
		)
	}
	m.AddRow(8)
}

func (g *PDFGenerator) addOverview(m core.Maroto, data *ReportData) {
	g.addSection(m, "Overview")

	failed := 0
	for _, s := range data.Scenarios {
		if s.Err != "" {
			failed++
		}
	}
	g.addMetricCards(m, []metricCard{
		{Label: "Scenarios", Value: fmt.Sprintf("%d", len(data.Scenarios)), Highlight: true},
		{Label: "Failed", Value: fmt.Sprintf("%d", failed)},
		{Label: "Max nodes A*", Value: fmt.Sprintf("%d", data.MaxNodesAStar)},
		{Label: "Max nodes Beam", Value: fmt.Sprintf("%d", data.MaxNodesBeam)},
	})
}

func (g *PDFGenerator) addStatistics(m core.Maroto, data *ReportData) {
	stats := data.Statistics()
	if len(stats) == 0 {
		return
	}
	g.addSection(m, "Algorithm Statistics")

	m.AddRow(8,
		text.NewCol(3, "Algorithm", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(1, "Runs", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Success", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(1, "Limit", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(1, "Cost", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Nodes", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Time, s", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
	)
	for _, st := range stats {
		rate := tableCellTextStyle
		switch {
		case st.SuccessRate() >= 0.99:
			rate.Color = successColor
		case st.SuccessRate() >= 0.5:
			rate.Color = warningColor
		default:
			rate.Color = dangerColor
		}
		m.AddRow(6,
			text.NewCol(3, st.Label, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(1, fmt.Sprintf("%d", st.Runs), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, fmt.Sprintf("%.1f%%", st.SuccessRate()*100), rate).WithStyle(tableCellStyle),
			text.NewCol(1, fmt.Sprintf("%d", st.LimitReached), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(1, fmt.Sprintf("%.1f", st.AverageCost), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, fmt.Sprintf("%.0f", st.AverageNodes), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, seconds(st.AverageElapsed), tableCellTextStyle).WithStyle(tableCellStyle),
		)
	}
}

func (g *PDFGenerator) addVerdicts(m core.Maroto, data *ReportData) {
	counts := data.Verdicts()
	if len(counts) == 0 {
		return
	}
	g.addSection(m, "Comparison Verdicts")
	for _, v := range verdictOrder {
		if counts[v] == 0 {
			continue
		}
		m.AddRow(6,
			text.NewCol(2, fmt.Sprintf("%d", counts[v]), props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Center}),
			text.NewCol(10, v.Describe(), props.Text{Size: 9}),
		)
	}
}

// addScenarios таблица результатов по сценариям; пути не выводятся
func (g *PDFGenerator) addScenarios(m core.Maroto, data *ReportData) {
	if len(data.Scenarios) == 0 {
		return
	}
	g.addSection(m, "Scenarios")

	for _, s := range data.Scenarios {
		g.addSubSection(m, fmt.Sprintf("%d. %s", s.Index, s.Name))
		m.AddRow(5,
			text.NewCol(12, fmt.Sprintf("Grid %s, %s -> %s, seed %d, density %.2f",
				s.GridDims(), s.Start, s.Goal, s.Seed, s.Density), smallStyle),
		)
		if s.Err != "" {
			m.AddRow(6,
				text.NewCol(12, "Failed: "+s.Err, props.Text{Size: 9, Color: dangerColor}),
			)
			continue
		}

		m.AddRow(7,
			text.NewCol(3, "Algorithm", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
			text.NewCol(2, "Found", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
			text.NewCol(1, "Cost", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
			text.NewCol(2, "Nodes", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
			text.NewCol(2, "Time, s", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
			text.NewCol(2, "Verdict", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		)
		if s.AStar != nil {
			g.addResultRow(m, s.AStar, "")
		}
		for _, b := range s.Beams {
			g.addResultRow(m, b.Result, b.Verdict)
		}
		m.AddRow(4)
	}
}

func (g *PDFGenerator) addResultRow(m core.Maroto, r *domain.SearchResult, verdict domain.Verdict) {
	found := tableCellTextStyle
	if r.Found() {
		found.Color = successColor
	} else {
		found.Color = dangerColor
	}
	status := yesNo(r.Found())
	if r.LimitReached {
		status += " (limit)"
	}
	m.AddRow(6,
		text.NewCol(3, r.Label(), tableCellTextStyle).WithStyle(tableCellStyle),
		text.NewCol(2, status, found).WithStyle(tableCellStyle),
		text.NewCol(1, scoreOrNA(r), tableCellTextStyle).WithStyle(tableCellStyle),
		text.NewCol(2, fmt.Sprintf("%d", r.NodesProcessed), tableCellTextStyle).WithStyle(tableCellStyle),
		text.NewCol(2, seconds(r.Elapsed), tableCellTextStyle).WithStyle(tableCellStyle),
		text.NewCol(2, string(verdict), tableCellTextStyle).WithStyle(tableCellStyle),
	)
}

type metricCard struct {
	Label     string
	Value     string
	Highlight bool
}

func (g *PDFGenerator) addMetricCards(m core.Maroto, cards []metricCard) {
	if len(cards) == 0 {
		return
	}

	colSize := 12 / len(cards)
	if colSize < 2 {
		colSize = 2
	}

	var cols []core.Col
	for _, card := range cards {
		valueStyle := metricValueStyle
		if !card.Highlight {
			valueStyle.Size = 14
		}
		cols = append(cols,
			col.New(colSize).Add(
				text.New(card.Value, valueStyle),
				text.New(card.Label, metricLabelStyle),
			),
		)
	}
	m.AddRow(20, cols...)
}

func (g *PDFGenerator) addSection(m core.Maroto, title string) {
	m.AddRow(10,
		text.NewCol(12, title, h2Style),
	)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: primaryColor}),
	)
	m.AddRow(4)
}

func (g *PDFGenerator) addSubSection(m core.Maroto, title string) {
	m.AddRow(8,
		text.NewCol(12, title, h3Style),
	)
}

func (g *PDFGenerator) addFooter(m core.Maroto, data *ReportData) {
	m.AddRow(10)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: lightGrayColor}),
	)
	m.AddRow(6,
		text.NewCol(12,
			fmt.Sprintf("Generated by gridbench | %s", generatedAt(data).Format("2006-01-02 15:04:05")),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Center},
		),
	)
}

func generatedAt(data *ReportData) time.Time {
	if data.GeneratedAt.IsZero() {
		return time.Now()
	}
	return data.GeneratedAt
}
