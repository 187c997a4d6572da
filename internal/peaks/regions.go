package peaks

// region is a half-open [start, end) index interval of samples above
// threshold.
type region struct {
	start int
	end   int
}

// findRegions extracts contiguous true runs from mask. A run still open at
// the end of the array closes at the array length.
func findRegions(mask []bool) []region {
	var regions []region
	inRegion := false
	start := 0
	for idx, flag := range mask {
		switch {
		case flag && !inRegion:
			start = idx
			inRegion = true
		case !flag && inRegion:
			regions = append(regions, region{start: start, end: idx})
			inRegion = false
		}
	}
	if inRegion {
		regions = append(regions, region{start: start, end: len(mask)})
	}
	return regions
}

type peak struct {
	index       int
	time        float64
	amp         float64
	snr         float64
	regionStart int
	regionEnd   int
}

// applyDeadTime removes peaks spaced closer than minDistance samples with a
// greedy forward sweep: each later peak inside the window of the currently
// retained peak replaces it only when higher, and scanning resumes past the
// consumed range. Clusters of three or more resolve transitively against
// the survivor, which can retain a peak that is not the global cluster
// maximum; that greedy behavior is deliberate and encoded in tests.
func applyDeadTime(candidates []peak, minDistance int) []peak {
	if len(candidates) == 0 {
		return nil
	}
	var filtered []peak
	i := 0
	for i < len(candidates) {
		current := candidates[i]
		j := i + 1
		for j < len(candidates) && candidates[j].index-current.index < minDistance {
			if candidates[j].amp > current.amp {
				current = candidates[j]
			}
			j++
		}
		filtered = append(filtered, current)
		i = j
	}
	return filtered
}
