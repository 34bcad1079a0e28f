package dsort

import "sort"

// selectSplitters sorts the union of all per-chunk sample keys and picks n
// evenly spaced values from it, approximating the n-quantiles of the global
// key distribution. Accuracy improves with larger sample budgets and more
// input chunks; partition balance is only as good as the sample.
func selectSplitters(strat Strategy, samples [][]Key, n int) []Key {
	total := 0
	for _, s := range samples {
		total += len(s)
	}
	all := make([]Key, 0, total)
	for _, s := range samples {
		all = append(all, s...)
	}
	sort.SliceStable(all, func(i, j int) bool { return strat.Compare(all[i], all[j]) < 0 })

	idxs := quantileIndices(len(all), n)
	out := make([]Key, len(idxs))
	for i, idx := range idxs {
		out[i] = all[idx]
	}
	return out
}

// splitterLevels derives the coarse top-level splitters partitioning the
// key space into parts intervals, plus, per interval, the finer splitters
// falling strictly inside it. Subsetting is positional, not by value, so
// duplicate splitter values cannot change the combined output count:
// len(coarse) + total fine == len(splitters) always holds.
func splitterLevels(splitters []Key, parts int) (coarse []Key, fine [][]Key) {
	idxs := quantileIndices(len(splitters), parts-1)

	coarse = make([]Key, 0, len(idxs))
	fine = make([][]Key, len(idxs)+1)
	prev := 0
	for i, idx := range idxs {
		coarse = append(coarse, splitters[idx])
		fine[i] = splitters[prev:idx]
		prev = idx + 1
	}
	fine[len(idxs)] = splitters[prev:]
	return coarse, fine
}
