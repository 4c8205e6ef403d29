// Package scenario описывает таблицу экспериментов: сетка, концы пути,
// параметры процедурного поля препятствий и ширины луча для сравнения.
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"gridbench/pkg/apperror"
	"gridbench/pkg/domain"
	"gridbench/services/search-svc/internal/algorithms"
)

// Scenario один эксперимент
type Scenario struct {
	Name       string          `json:"name"`
	Bounds     domain.Bounds   `json:"bounds"`
	Start      domain.Position `json:"start"`
	Goal       domain.Position `json:"goal"`
	Seed       int64           `json:"seed"`
	Density    float64         `json:"density"`
	BeamWidths []int           `json:"beam_widths"`
}

// Request собирает запрос поиска на процедурной сетке сценария
func (s Scenario) Request(algorithm string, width, maxNodes int) *algorithms.Request {
	return algorithms.NewProceduralRequest(algorithm, s.Bounds, s.Start, s.Goal, s.Seed, s.Density).
		WithMaxNodes(maxNodes).
		WithBeamWidth(width)
}

// GridDims размеры в виде "RxC"
func (s Scenario) GridDims() string {
	return fmt.Sprintf("%dx%d", s.Bounds.Rows, s.Bounds.Cols)
}

// file формат YAML файла
type file struct {
	Scenarios []entry `yaml:"scenarios"`
}

type entry struct {
	Name       string  `yaml:"name"`
	Rows       int     `yaml:"rows"`
	Cols       int     `yaml:"cols"`
	Start      [2]int  `yaml:"start"`
	Goal       [2]int  `yaml:"goal"`
	Seed       int64   `yaml:"seed"`
	Density    float64 `yaml:"density"`
	BeamWidths []int   `yaml:"beam_widths"`
}

// Parse читает таблицу сценариев из YAML.
//
//	scenarios:
//	  - name: short
//	    rows: 100
//	    cols: 100
//	    start: [0, 0]
//	    goal: [50, 50]
//	    seed: 123
//	    density: 0.1
//	    beam_widths: [8, 16]
//
// Пропущенные rows/cols берутся как domain.DefaultGridSize,
// пропущенные beam_widths как domain.DefaultBeamWidths.
func Parse(r io.Reader) ([]Scenario, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperror.New(apperror.CodeInvalidScenario, "scenario file is empty")
		}
		return nil, apperror.Wrap(err, apperror.CodeInvalidScenario, "decode scenario file")
	}

	out := make([]Scenario, 0, len(f.Scenarios))
	for _, e := range f.Scenarios {
		s := Scenario{
			Name:       e.Name,
			Bounds:     domain.Bounds{Rows: e.Rows, Cols: e.Cols},
			Start:      domain.Pos(e.Start[0], e.Start[1]),
			Goal:       domain.Pos(e.Goal[0], e.Goal[1]),
			Seed:       e.Seed,
			Density:    e.Density,
			BeamWidths: e.BeamWidths,
		}
		if s.Bounds.Rows == 0 {
			s.Bounds.Rows = domain.DefaultGridSize
		}
		if s.Bounds.Cols == 0 {
			s.Bounds.Cols = domain.DefaultGridSize
		}
		if s.BeamWidths == nil {
			s.BeamWidths = append([]int(nil), domain.DefaultBeamWidths...)
		}
		out = append(out, s)
	}

	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadFile читает сценарии из файла
func LoadFile(path string) ([]Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidScenario, "open scenario file").
			WithDetails("path", path)
	}
	defer f.Close()

	return Parse(f)
}

// Validate проверяет все сценарии и собирает все ошибки.
// Поле ошибки указывает на сценарий, например "scenarios[3].goal".
func Validate(list []Scenario) error {
	v := apperror.NewValidationErrors()
	if len(list) == 0 {
		v.AddError(apperror.CodeInvalidScenario, "scenario list is empty")
		return v.Err()
	}

	seen := make(map[string]int, len(list))
	for i, s := range list {
		prefix := fmt.Sprintf("scenarios[%d]", i)

		if s.Name == "" {
			v.AddErrorWithField(apperror.CodeInvalidScenario, "scenario name is required", prefix+".name")
		} else if j, dup := seen[s.Name]; dup {
			v.AddErrorWithField(apperror.CodeDuplicateScenario,
				fmt.Sprintf("scenario %q already defined at index %d", s.Name, j), prefix+".name")
		} else {
			seen[s.Name] = i
		}

		if len(s.BeamWidths) == 0 {
			v.AddErrorWithField(apperror.CodeInvalidBeamWidth, "at least one beam width is required", prefix+".beam_widths")
		}
		for _, w := range s.BeamWidths {
			if w < 0 {
				v.AddErrorWithField(apperror.CodeInvalidBeamWidth,
					fmt.Sprintf("beam width must be non-negative, got %d", w), prefix+".beam_widths")
			}
		}

		// остальные правила совпадают с проверкой запроса поиска
		for _, e := range algorithms.CheckRequest(s.Request(domain.AlgorithmAStar, 0, 1)).Errors {
			v.Add(apperror.NewWithField(e.Code, e.Message, prefix+"."+e.Field))
		}
	}
	return v.Err()
}
