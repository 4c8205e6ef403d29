package domain

import "time"

// SearchStatistics агрегированная статистика по набору запусков одного алгоритма
type SearchStatistics struct {
	Label          string
	Runs           int
	Found          int
	LimitReached   int
	TotalNodes     int64
	TotalElapsed   time.Duration
	AverageCost    float64
	AverageNodes   float64
	AverageElapsed time.Duration
	MinCost        int
	MaxCost        int
}

// SuccessRate доля запусков, нашедших путь
func (s *SearchStatistics) SuccessRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Found) / float64(s.Runs)
}

// CalculateStatistics группирует результаты по подписи алгоритма.
// Порядок групп совпадает с порядком первого появления.
func CalculateStatistics(results []*SearchResult) []*SearchStatistics {
	byLabel := make(map[string]*SearchStatistics)
	order := []string{}
	costSum := make(map[string]int64)

	for _, r := range results {
		if r == nil {
			continue
		}
		label := r.Label()
		s, ok := byLabel[label]
		if !ok {
			s = &SearchStatistics{Label: label, MinCost: Unreachable, MaxCost: Unreachable}
			byLabel[label] = s
			order = append(order, label)
		}

		s.Runs++
		s.TotalNodes += int64(r.NodesProcessed)
		s.TotalElapsed += r.Elapsed
		if r.LimitReached {
			s.LimitReached++
		}
		if !r.Found() {
			continue
		}

		s.Found++
		costSum[label] += int64(r.Cost)
		if s.MinCost == Unreachable || r.Cost < s.MinCost {
			s.MinCost = r.Cost
		}
		if r.Cost > s.MaxCost {
			s.MaxCost = r.Cost
		}
	}

	out := make([]*SearchStatistics, 0, len(order))
	for _, label := range order {
		s := byLabel[label]
		s.AverageNodes = float64(s.TotalNodes) / float64(s.Runs)
		s.AverageElapsed = s.TotalElapsed / time.Duration(s.Runs)
		if s.Found > 0 {
			s.AverageCost = float64(costSum[label]) / float64(s.Found)
		}
		out = append(out, s)
	}
	return out
}

// VerdictCounts считает вердикты сравнения
func VerdictCounts(verdicts []Verdict) map[Verdict]int {
	counts := make(map[Verdict]int, len(verdicts))
	for _, v := range verdicts {
		counts[v]++
	}
	return counts
}
