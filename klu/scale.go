package klu

// permuteScaleToPivotal reorders an original-row-indexed scale vector into
// pivotal order, so Solve's `b[i] /= Rs[i]` can operate directly on the
// pivoted RHS (spec §4.C.3).
func permuteScaleToPivotal(rsByOrigRow []float64, pnum []int) []float64 {
	out := make([]float64, len(pnum))
	for pos, origRow := range pnum {
		out[pos] = rsByOrigRow[origRow]
	}

	return out
}
