package dataprocessing

import (
	"sort"
	"strings"

	"cordexplorer/pkg/contracts/domain"
)

// DefaultTopN is the number of entries kept in top-N tables.
const DefaultTopN = 10

// FilterYearRange returns the papers whose year lies in the inclusive range
// [from, to]. Papers without a year never match. The input is not modified.
func FilterYearRange(papers []domain.Paper, from, to int) []domain.Paper {
	r := domain.YearRange{From: from, To: to}
	out := make([]domain.Paper, 0, len(papers))
	for _, p := range papers {
		if p.Year != nil && r.Contains(*p.Year) {
			out = append(out, p)
		}
	}
	return out
}

// YearBounds returns the smallest and largest year present. ok is false when
// no paper has a year.
func YearBounds(papers []domain.Paper) (minYear, maxYear int, ok bool) {
	for _, p := range papers {
		if p.Year == nil {
			continue
		}
		y := *p.Year
		if !ok {
			minYear, maxYear, ok = y, y, true
			continue
		}
		if y < minYear {
			minYear = y
		}
		if y > maxYear {
			maxYear = y
		}
	}
	return minYear, maxYear, ok
}

// YearHistogram counts papers per year, ordered by year ascending. Papers
// without a year are not counted.
func YearHistogram(papers []domain.Paper) []domain.YearCount {
	counts := make(map[int]int)
	for _, p := range papers {
		if p.Year != nil {
			counts[*p.Year]++
		}
	}

	hist := make([]domain.YearCount, 0, len(counts))
	for year, n := range counts {
		hist = append(hist, domain.YearCount{Year: year, Count: n})
	}
	sort.Slice(hist, func(i, j int) bool { return hist[i].Year < hist[j].Year })
	return hist
}

// TopN counts papers per distinct non-empty value of field and returns the n
// most frequent, ordered by count descending. Equal counts keep the order in
// which the values first appear. n <= 0 returns every value.
func TopN(papers []domain.Paper, field domain.Field, n int) []domain.ValueCount {
	index := make(map[string]int)
	var counts []domain.ValueCount
	for _, p := range papers {
		v := p.Value(field)
		if v == "" {
			continue
		}
		i, seen := index[v]
		if !seen {
			i = len(counts)
			index[v] = i
			counts = append(counts, domain.ValueCount{Value: v})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	if counts == nil {
		counts = []domain.ValueCount{}
	}
	return counts
}

// TitleCorpus joins every non-empty title with a single space.
func TitleCorpus(papers []domain.Paper) string {
	titles := make([]string, 0, len(papers))
	for _, p := range papers {
		if p.Title != "" {
			titles = append(titles, p.Title)
		}
	}
	return strings.Join(titles, " ")
}

// Aggregates bundles the summaries rendered by the batch path.
type Aggregates struct {
	Years       []domain.YearCount
	TopJournals []domain.ValueCount
	TopSources  []domain.ValueCount
	TitleCorpus string
}

// Aggregate computes every batch summary over papers.
func Aggregate(papers []domain.Paper, topN int) Aggregates {
	return Aggregates{
		Years:       YearHistogram(papers),
		TopJournals: TopN(papers, domain.FieldJournal, topN),
		TopSources:  TopN(papers, domain.FieldSource, topN),
		TitleCorpus: TitleCorpus(papers),
	}
}
