package formats

import "math"

// triangulate splits a polygon into len(corners)-2 triangles, returned as
// triples of indices into corners that keep the polygon's winding.
// Quads are split along whichever diagonal lies inside them; larger polygons
// are ear-clipped on their dominant plane. Polygons that cannot be projected
// or clipped are fan-split.
func triangulate(corners []OBJIndex, positions []float32) [][3]int {
	n := len(corners)
	if n == 3 {
		return [][3]int{{0, 1, 2}}
	}
	pts, sign, ok := project(corners, positions)
	if !ok {
		return fan(n)
	}
	if n == 4 {
		return splitQuad(pts, sign)
	}
	if tris := earClip(pts, sign); tris != nil {
		return tris
	}
	return fan(n)
}

func fan(n int) [][3]int {
	tris := make([][3]int, 0, n-2)
	for i := 1; i+1 < n; i++ {
		tris = append(tris, [3]int{0, i, i + 1})
	}
	return tris
}

// project maps the polygon onto the axis plane its Newell normal is most
// aligned with. sign is the orientation of the projected winding.
func project(corners []OBJIndex, positions []float32) ([][2]float64, float64, bool) {
	n := len(corners)
	pts3 := make([][3]float64, n)
	for i, c := range corners {
		if c.Position == NoIndex || c.Position*3+2 >= len(positions) {
			return nil, 0, false
		}
		o := c.Position * 3
		pts3[i] = [3]float64{float64(positions[o]), float64(positions[o+1]), float64(positions[o+2])}
	}

	var nx, ny, nz float64
	for i := 0; i < n; i++ {
		a, b := pts3[i], pts3[(i+1)%n]
		nx += (a[1] - b[1]) * (a[2] + b[2])
		ny += (a[2] - b[2]) * (a[0] + b[0])
		nz += (a[0] - b[0]) * (a[1] + b[1])
	}
	ax, ay := 0, 1
	switch {
	case math.Abs(nx) >= math.Abs(ny) && math.Abs(nx) >= math.Abs(nz):
		ax, ay = 1, 2
	case math.Abs(ny) >= math.Abs(nz):
		ax, ay = 2, 0
	}

	pts := make([][2]float64, n)
	var area float64
	for i := range pts3 {
		pts[i] = [2]float64{pts3[i][ax], pts3[i][ay]}
	}
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		area += a[0]*b[1] - b[0]*a[1]
	}
	if math.Abs(area) < 1e-12 {
		return nil, 0, false
	}
	if area < 0 {
		return pts, -1, true
	}
	return pts, 1, true
}

// splitQuad uses the 0-2 diagonal unless corner 1 or 3 is reflex, in which
// case the 1-3 diagonal is the one inside the quad.
func splitQuad(pts [][2]float64, sign float64) [][3]int {
	if cross2(pts[0], pts[1], pts[2])*sign > 0 && cross2(pts[2], pts[3], pts[0])*sign > 0 {
		return fan(4)
	}
	return [][3]int{{1, 2, 3}, {1, 3, 0}}
}

func earClip(pts [][2]float64, sign float64) [][3]int {
	n := len(pts)
	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}

	tris := make([][3]int, 0, n-2)
	for len(remaining) > 3 {
		m := len(remaining)
		clipped := false
		for i := 0; i < m; i++ {
			prev, cur, next := remaining[(i+m-1)%m], remaining[i], remaining[(i+1)%m]
			if cross2(pts[prev], pts[cur], pts[next])*sign <= 0 {
				continue // reflex or collinear
			}
			if anyInside(pts, remaining, prev, cur, next) {
				continue
			}
			tris = append(tris, [3]int{prev, cur, next})
			remaining = append(remaining[:i], remaining[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			return nil
		}
	}
	return append(tris, [3]int{remaining[0], remaining[1], remaining[2]})
}

func cross2(a, b, c [2]float64) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func anyInside(pts [][2]float64, remaining []int, a, b, c int) bool {
	for _, idx := range remaining {
		if idx == a || idx == b || idx == c {
			continue
		}
		p := pts[idx]
		d1 := cross2(pts[a], pts[b], p)
		d2 := cross2(pts[b], pts[c], p)
		d3 := cross2(pts[c], pts[a], p)
		hasNeg := d1 < 0 || d2 < 0 || d3 < 0
		hasPos := d1 > 0 || d2 > 0 || d3 > 0
		if !(hasNeg && hasPos) {
			return true
		}
	}
	return false
}
