// Package report превращает результаты эксперимента в файлы отчётов:
// CSV, подробный текстовый лог, JSON, Excel и PDF.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gridbench/pkg/domain"
)

// Format формат отчёта
type Format string

const (
	FormatCSV   Format = "csv"
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatExcel Format = "excel"
	FormatPDF   Format = "pdf"
)

// Formats все поддерживаемые форматы
var Formats = []Format{FormatCSV, FormatText, FormatJSON, FormatExcel, FormatPDF}

// ParseFormat разбирает имя формата без учёта регистра
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// FileName имя файла отчёта: <base>.csv и <stem>_verbose_log.txt,
// где stem это base без "_results".
func (f Format) FileName(base string) string {
	switch f {
	case FormatText:
		return strings.TrimSuffix(base, "_results") + "_verbose_log.txt"
	case FormatExcel:
		return base + ".xlsx"
	default:
		return base + "." + string(f)
	}
}

// Generator генератор отчёта одного формата
type Generator interface {
	Generate(ctx context.Context, data *ReportData) ([]byte, error)
	Format() Format
}

// New возвращает генератор формата
func New(f Format) (Generator, error) {
	switch f {
	case FormatCSV:
		return NewCSVGenerator(), nil
	case FormatText:
		return NewTextGenerator(), nil
	case FormatJSON:
		return NewJSONGenerator(), nil
	case FormatExcel:
		return NewExcelGenerator(), nil
	case FormatPDF:
		return NewPDFGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", f)
	}
}

// ReportData всё, что нужно генераторам
type ReportData struct {
	RunID         string
	Title         string
	Author        string
	GeneratedAt   time.Time
	MaxNodesAStar int
	MaxNodesBeam  int

	// имена файлов для вступительной и заключительной строки текстового лога
	CSVFile  string
	TextFile string

	Scenarios []*ScenarioResult
}

// ScenarioResult результаты одного сценария
type ScenarioResult struct {
	Index   int // с единицы
	Name    string
	Bounds  domain.Bounds
	Start   domain.Position
	Goal    domain.Position
	Seed    int64
	Density float64
	AStar   *domain.SearchResult
	Beams   []BeamResult
	Err     string // сценарий не выполнен
}

// BeamResult beam search одной ширины
type BeamResult struct {
	Width   int
	Result  *domain.SearchResult
	Verdict domain.Verdict
}

// GridDims размеры в виде "RxC"
func (s *ScenarioResult) GridDims() string {
	return fmt.Sprintf("%dx%d", s.Bounds.Rows, s.Bounds.Cols)
}

// Results все результаты сценария, A* первым
func (s *ScenarioResult) Results() []*domain.SearchResult {
	out := []*domain.SearchResult{}
	if s.AStar != nil {
		out = append(out, s.AStar)
	}
	for _, b := range s.Beams {
		out = append(out, b.Result)
	}
	return out
}

// Statistics сводка по алгоритмам, A* первым, затем ширины по возрастанию
func (d *ReportData) Statistics() []*domain.SearchStatistics {
	var astar, beams []*domain.SearchResult
	for _, s := range d.Scenarios {
		if s.AStar != nil {
			astar = append(astar, s.AStar)
		}
		for _, b := range s.Beams {
			beams = append(beams, b.Result)
		}
	}
	sort.SliceStable(beams, func(i, j int) bool { return beams[i].BeamWidth < beams[j].BeamWidth })
	return domain.CalculateStatistics(append(astar, beams...))
}

// Verdicts количество каждого вердикта по всем сравнениям
func (d *ReportData) Verdicts() map[domain.Verdict]int {
	var all []domain.Verdict
	for _, s := range d.Scenarios {
		for _, b := range s.Beams {
			all = append(all, b.Verdict)
		}
	}
	return domain.VerdictCounts(all)
}

// verdictOrder порядок вердиктов в сводках
var verdictOrder = []domain.Verdict{
	domain.VerdictAStarBetter,
	domain.VerdictBeamBetter,
	domain.VerdictTie,
	domain.VerdictOnlyAStar,
	domain.VerdictOnlyBeam,
	domain.VerdictNeitherFound,
}

func (d *ReportData) title() string {
	if d.Title != "" {
		return d.Title
	}
	return "A* vs Beam Search on Implicit Grids"
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.6f", d.Seconds())
}

// scoreOrNA стоимость пути или "N/A", если путь не найден
func scoreOrNA(r *domain.SearchResult) string {
	if r.Found() {
		return fmt.Sprintf("%d", r.Cost)
	}
	return "N/A"
}
