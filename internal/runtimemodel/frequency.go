package runtimemodel

import (
	"sort"
	"strings"

	"catma/internal/link"
)

// TransitionCount is the summed frequency of one transition label.
type TransitionCount struct {
	Label     string `yaml:"label"`
	Frequency int    `yaml:"frequency"`
}

// TopTransitions sums transition frequencies by first label line and returns
// the n most frequent, highest first. Ties keep the order in which labels
// were first seen. Unparsable frequencies count as zero.
func TopTransitions(m *Model, n int) []TransitionCount {
	if n <= 0 {
		return nil
	}
	index := make(map[string]int)
	var counts []TransitionCount
	for _, t := range m.transitions {
		if !t.labeled {
			continue
		}
		key := strings.ReplaceAll(link.FirstLine(t.label), `"`, "")
		freq, err := link.Frequency(t.label)
		if err != nil {
			freq = 0
		}
		i, ok := index[key]
		if !ok {
			i = len(counts)
			index[key] = i
			counts = append(counts, TransitionCount{Label: key})
		}
		counts[i].Frequency += freq
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Frequency > counts[j].Frequency })
	if n < len(counts) {
		counts = counts[:n]
	}
	return counts
}
