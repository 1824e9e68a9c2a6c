package geo

import "math"

const earthRadiusKm = 6371.0

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HaversineKm returns the great-circle distance between a and b in kilometres.
func HaversineKm(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// PathLengthKm sums the segment lengths of a polyline.
func PathLengthKm(line []Point) float64 {
	total := 0.0
	for i := 1; i < len(line); i++ {
		total += HaversineKm(line[i-1], line[i])
	}
	return total
}

// project converts p to planar kilometre coordinates around a reference
// latitude. Good enough for corridor-width comparisons at route scale.
func project(p Point, refLat float64) (x, y float64) {
	x = p.Lng * math.Cos(refLat*math.Pi/180) * math.Pi / 180 * earthRadiusKm
	y = p.Lat * math.Pi / 180 * earthRadiusKm
	return
}

// pointToSegmentKm returns the distance from p to the segment [a,b].
func pointToSegmentKm(p, a, b Point) float64 {
	refLat := (a.Lat + b.Lat) / 2
	px, py := project(p, refLat)
	ax, ay := project(a, refLat)
	bx, by := project(b, refLat)

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return HaversineKm(p, a)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	cx, cy := ax+t*dx, ay+t*dy
	return math.Hypot(px-cx, py-cy)
}

// PointToPolylineKm returns the shortest distance from p to any segment of the
// polyline. A single-vertex line degenerates to point distance.
func PointToPolylineKm(p Point, line []Point) float64 {
	switch len(line) {
	case 0:
		return math.Inf(1)
	case 1:
		return HaversineKm(p, line[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(line); i++ {
		if d := pointToSegmentKm(p, line[i-1], line[i]); d < best {
			best = d
		}
	}
	return best
}

// NearestVertex returns the index of the polyline vertex closest to p.
func NearestVertex(p Point, line []Point) int {
	best, idx := math.Inf(1), 0
	for i, v := range line {
		if d := HaversineKm(p, v); d < best {
			best, idx = d, i
		}
	}
	return idx
}

// RemainingFrom slices the polyline from the vertex nearest to pos onward,
// prepending pos itself so the remaining path starts at the vehicle.
func RemainingFrom(line []Point, pos Point) []Point {
	if len(line) == 0 {
		return []Point{pos}
	}
	idx := NearestVertex(pos, line)
	rest := make([]Point, 0, len(line)-idx+1)
	rest = append(rest, pos)
	rest = append(rest, line[idx:]...)
	return rest
}
