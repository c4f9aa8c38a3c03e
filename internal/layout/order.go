package layout

import (
	"math"
	"sort"

	"github.com/pagesift/pagesift/internal/geometry"
)

// band is a horizontal row of regions sharing vertical extent.
type band struct {
	box     geometry.Box
	regions []Region
}

// orderRegions sorts regions into reading order: row bands top-to-bottom,
// left-to-right within a band. Two regions share a band when their
// vertical overlap exceeds bandOverlapRatio of the smaller height.
func orderRegions(regions []Region, bandOverlapRatio float64) {
	if len(regions) < 2 {
		return
	}

	sort.SliceStable(regions, func(i, j int) bool {
		if regions[i].Box.MinY != regions[j].Box.MinY {
			return regions[i].Box.MinY < regions[j].Box.MinY
		}
		return regions[i].Box.MinX < regions[j].Box.MinX
	})

	var bands []band
	for _, r := range regions {
		placed := false
		for i := range bands {
			overlap := bands[i].box.VerticalOverlap(r.Box)
			smaller := math.Min(bands[i].box.Height(), r.Box.Height())
			if smaller > 0 && overlap/smaller >= bandOverlapRatio {
				bands[i].regions = append(bands[i].regions, r)
				bands[i].box = bands[i].box.Union(r.Box)
				placed = true
				break
			}
		}
		if !placed {
			bands = append(bands, band{box: r.Box, regions: []Region{r}})
		}
	}

	sort.SliceStable(bands, func(i, j int) bool {
		return bands[i].box.MinY < bands[j].box.MinY
	})

	out := regions[:0]
	for _, b := range bands {
		sort.SliceStable(b.regions, func(i, j int) bool {
			return b.regions[i].Box.MinX < b.regions[j].Box.MinX
		})
		out = append(out, b.regions...)
	}
}
