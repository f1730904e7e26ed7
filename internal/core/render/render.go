// Package render turns a backend-computed results payload into display
// shapes. Everything here is a pure function of its input; vote counting
// stays on the backend.
package render

import (
	"math"
	"sort"
)

// Bar is one labeled progress bar.
type Bar struct {
	Label   string
	Votes   int
	Percent float64
}

// Dataset is chart-ready: parallel label and value slices.
type Dataset struct {
	Labels []string
	Values []float64
}

// Percent computes votes/total*100 rounded to one decimal. A zero total
// yields 0 for every option, never NaN.
func Percent(votes, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(votes)/float64(total)*1000) / 10
}

// Bars produces one bar per option, sorted by label for a stable display
// order (the results mapping itself is unordered).
func Bars(results map[string]int, total int) []Bar {
	labels := make([]string, 0, len(results))
	for label := range results {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	bars := make([]Bar, 0, len(labels))
	for _, label := range labels {
		bars = append(bars, Bar{
			Label:   label,
			Votes:   results[label],
			Percent: Percent(results[label], total),
		})
	}
	return bars
}

// Datasets derives the two chart datasets from one mapping: a categorical
// vote distribution (label order) and a ranked bar series (votes
// descending, label ascending on ties). Deriving both from the same input
// keeps the representations consistent with each other.
func Datasets(results map[string]int, total int) (distribution, ranked Dataset) {
	bars := Bars(results, total)

	distribution.Labels = make([]string, len(bars))
	distribution.Values = make([]float64, len(bars))
	for i, b := range bars {
		distribution.Labels[i] = b.Label
		distribution.Values[i] = float64(b.Votes)
	}

	byVotes := make([]Bar, len(bars))
	copy(byVotes, bars)
	sort.SliceStable(byVotes, func(i, j int) bool {
		return byVotes[i].Votes > byVotes[j].Votes
	})

	ranked.Labels = make([]string, len(byVotes))
	ranked.Values = make([]float64, len(byVotes))
	for i, b := range byVotes {
		ranked.Labels[i] = b.Label
		ranked.Values[i] = b.Percent
	}
	return distribution, ranked
}
