package layout

// mergeComponents groups components whose bounding boxes overlap beyond
// the configured ratio or whose gaps are below the line-spacing
// thresholds, so one paragraph does not split into several regions.
// Merging repeats until the grouping is stable, because merged boxes grow
// and can capture further neighbors.
func (d *Detector) mergeComponents(comps []component, w, h int) []component {
	lineGap := d.cfg.LineGapFraction * float64(h)
	hGap := lineGap * d.cfg.HorizontalGapFactor

	const maxPasses = 16
	for pass := 0; pass < maxPasses; pass++ {
		merged, changed := mergePass(comps, d.cfg.MergeOverlapRatio, lineGap, hGap)
		comps = merged
		if !changed {
			break
		}
	}
	return comps
}

// mergePass performs one union-find pass over all component pairs.
func mergePass(comps []component, overlapRatio, lineGap, hGap float64) ([]component, bool) {
	n := len(comps)
	if n < 2 {
		return comps, false
	}

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) bool {
		ra, rb := find(a), find(b)
		if ra == rb {
			return false
		}
		// Deterministic union: the lower root wins.
		if ra < rb {
			parent[rb] = ra
		} else {
			parent[ra] = rb
		}
		return true
	}

	changed := false
	for i := 0; i < n; i++ {
		bi := comps[i].box()
		for j := i + 1; j < n; j++ {
			bj := comps[j].box()
			if bi.OverlapRatio(bj) >= overlapRatio ||
				(bi.VerticalGap(bj) <= lineGap && bi.HorizontalGap(bj) <= hGap) {
				if union(i, j) {
					changed = true
				}
			}
		}
	}
	if !changed {
		return comps, false
	}

	// Collapse groups in root order to keep the result deterministic.
	grouped := make(map[int]*component)
	var order []int
	for i := range comps {
		root := find(i)
		if g, ok := grouped[root]; ok {
			g.absorb(comps[i])
		} else {
			c := comps[i]
			grouped[root] = &c
			order = append(order, root)
		}
	}
	out := make([]component, 0, len(order))
	for _, root := range order {
		out = append(out, *grouped[root])
	}
	return out, true
}
