package geometry

import "sort"

// ConvexHull computes the convex hull of a point set with a Graham scan
// and returns it in counter-clockwise order. Collinear points along an
// edge are dropped. Fewer than three points are returned unchanged. Used
// to turn detector landmark groups into closed face regions that the
// renderer can pin during body sculpts.
func ConvexHull(points []Point2D) []Point2D {
	if len(points) < 3 {
		return points
	}

	pts := make([]Point2D, len(points))
	copy(pts, points)

	// Pivot on the bottom-most point, leftmost on ties. It is on the
	// hull by construction.
	pivot := 0
	for i, p := range pts {
		if p.Y < pts[pivot].Y || (p.Y == pts[pivot].Y && p.X < pts[pivot].X) {
			pivot = i
		}
	}
	pts[0], pts[pivot] = pts[pivot], pts[0]

	rest := pts[1:]
	sort.Slice(rest, func(i, j int) bool {
		c := cross(pts[0], rest[i], rest[j])
		if c != 0 {
			return c > 0
		}
		return rest[i].Distance(pts[0]) < rest[j].Distance(pts[0])
	})

	hull := make([]Point2D, 0, len(pts))
	hull = append(hull, pts[0])
	for _, p := range rest {
		for len(hull) > 1 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull
}

// PointInPolygon reports whether p lies inside the polygon by casting a
// ray and counting edge crossings. Polygons with fewer than three
// vertices contain nothing.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	for i, a := range polygon {
		b := polygon[(i+1)%len(polygon)]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// cross is the z component of (a-o) x (b-o): positive when o, a, b turn
// counter-clockwise.
func cross(o, a, b Point2D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
