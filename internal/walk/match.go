package walk

import "slices"

// FindOccurred returns the candidates that appear as a contiguous run of
// tokens in at least one sampled path. Candidates keep their input order and
// each distinct candidate is reported once.
func FindOccurred(candidates []Sequence, paths []Path) []Sequence {
	reported := make(map[string]bool)
	var out []Sequence
	for _, c := range candidates {
		k := key(c)
		if reported[k] {
			continue
		}
		for _, p := range paths {
			if containsRun(p, c) {
				reported[k] = true
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// containsRun reports whether sub occurs contiguously in s. An empty sub
// never matches.
func containsRun(s, sub []string) bool {
	if len(sub) == 0 || len(sub) > len(s) {
		return false
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if slices.Equal(s[i:i+len(sub)], sub) {
			return true
		}
	}
	return false
}
