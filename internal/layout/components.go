package layout

import (
	"container/list"

	"github.com/pagesift/pagesift/internal/geometry"
)

// component aggregates statistics for a connected ink component or a
// merged group of components.
type component struct {
	count int // ink pixels
	minX  int
	minY  int
	maxX  int
	maxY  int
}

func (c component) box() geometry.Box {
	return geometry.NewBox(float64(c.minX), float64(c.minY), float64(c.maxX+1), float64(c.maxY+1))
}

func (c component) boxArea() int {
	return (c.maxX - c.minX + 1) * (c.maxY - c.minY + 1)
}

func (c component) width() int  { return c.maxX - c.minX + 1 }
func (c component) height() int { return c.maxY - c.minY + 1 }

// absorb folds other into c.
func (c *component) absorb(other component) {
	c.count += other.count
	if other.minX < c.minX {
		c.minX = other.minX
	}
	if other.minY < c.minY {
		c.minY = other.minY
	}
	if other.maxX > c.maxX {
		c.maxX = other.maxX
	}
	if other.maxY > c.maxY {
		c.maxY = other.maxY
	}
}

// connectedComponents finds 4-connected components in the ink mask and
// returns their pixel counts and bounding boxes. Scan order is row-major,
// so the result is deterministic for identical masks.
func connectedComponents(mask []bool, w, h int) []component {
	visited := make([]bool, w*h)
	var comps []component

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if mask[idx] && !visited[idx] {
				comps = append(comps, componentBFS(mask, visited, w, h, x, y))
			}
		}
	}
	return comps
}

// componentBFS performs BFS traversal for one component from a seed pixel.
func componentBFS(mask []bool, visited []bool, w, h, startX, startY int) component {
	idx := func(x, y int) int { return y*w + x }
	startIdx := idx(startX, startY)

	c := component{minX: startX, minY: startY, maxX: startX, maxY: startY}
	q := list.New()
	q.PushBack(startIdx)
	visited[startIdx] = true

	dirs := [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

	for q.Len() > 0 {
		e := q.Front()
		q.Remove(e)
		ci, ok := e.Value.(int)
		if !ok {
			continue
		}
		cx, cy := ci%w, ci/w
		c.count++
		if cx < c.minX {
			c.minX = cx
		}
		if cy < c.minY {
			c.minY = cy
		}
		if cx > c.maxX {
			c.maxX = cx
		}
		if cy > c.maxY {
			c.maxY = cy
		}
		for _, d := range dirs {
			nx, ny := cx+d[0], cy+d[1]
			if nx >= 0 && nx < w && ny >= 0 && ny < h {
				ni := idx(nx, ny)
				if mask[ni] && !visited[ni] {
					visited[ni] = true
					q.PushBack(ni)
				}
			}
		}
	}
	return c
}
