package geo

import "math"

const (
	earthRadiusM = 6371000

	// metersPerDegree approximates one degree of latitude; used to turn a
	// meter tolerance into the degree space Douglas-Peucker works in.
	metersPerDegree = 111000
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is the south-west/north-east box around a set of points.
type Bounds struct {
	SouthWest Point `json:"south_west"`
	NorthEast Point `json:"north_east"`
}

// HaversineM returns the great-circle distance in meters assuming a
// spherical Earth of radius 6371km.
func HaversineM(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// InitialBearing returns the bearing in degrees [0,360) from the first
// point towards the second.
func InitialBearing(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLngRad := (lng2 - lng1) * math.Pi / 180

	y := math.Sin(dLngRad) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) -
		math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(dLngRad)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// Simplify reduces a polyline with the Douglas-Peucker algorithm.
// toleranceMeters is converted to approximate degrees. Inputs of two or
// fewer points are returned as a copy, endpoints are always preserved,
// and identical inputs always yield identical outputs.
func Simplify(points []Point, toleranceMeters float64) []Point {
	if len(points) <= 2 {
		out := make([]Point, len(points))
		copy(out, points)
		return out
	}
	if toleranceMeters <= 0 {
		out := make([]Point, len(points))
		copy(out, points)
		return out
	}

	toleranceDeg := toleranceMeters / metersPerDegree
	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true
	douglasPeucker(points, 0, len(points)-1, toleranceDeg, keep)

	out := make([]Point, 0, len(points))
	for i, p := range points {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

func douglasPeucker(points []Point, first, last int, tolerance float64, keep []bool) {
	if last <= first+1 {
		return
	}

	maxDist := 0.0
	maxIdx := first
	for i := first + 1; i < last; i++ {
		d := perpendicularDistance(points[i], points[first], points[last])
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist > tolerance {
		keep[maxIdx] = true
		douglasPeucker(points, first, maxIdx, tolerance, keep)
		douglasPeucker(points, maxIdx, last, tolerance, keep)
	}
}

// perpendicularDistance works in planar degree space, which is accurate
// enough at the small tolerances used for track display.
func perpendicularDistance(p, a, b Point) float64 {
	dx := b.Lng - a.Lng
	dy := b.Lat - a.Lat

	if dx == 0 && dy == 0 {
		return math.Hypot(p.Lng-a.Lng, p.Lat-a.Lat)
	}

	t := ((p.Lng-a.Lng)*dx + (p.Lat-a.Lat)*dy) / (dx*dx + dy*dy)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	projLng := a.Lng + t*dx
	projLat := a.Lat + t*dy
	return math.Hypot(p.Lng-projLng, p.Lat-projLat)
}

// BoundsOf returns the bounding box covering the points, or nil for
// fewer than two points. Callers rendering a single point should use a
// fixed zoom rather than a degenerate box.
func BoundsOf(points []Point) *Bounds {
	if len(points) < 2 {
		return nil
	}

	b := Bounds{
		SouthWest: points[0],
		NorthEast: points[0],
	}
	for _, p := range points[1:] {
		if p.Lat < b.SouthWest.Lat {
			b.SouthWest.Lat = p.Lat
		}
		if p.Lat > b.NorthEast.Lat {
			b.NorthEast.Lat = p.Lat
		}
		if p.Lng < b.SouthWest.Lng {
			b.SouthWest.Lng = p.Lng
		}
		if p.Lng > b.NorthEast.Lng {
			b.NorthEast.Lng = p.Lng
		}
	}
	return &b
}
