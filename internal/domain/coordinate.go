package domain

import "math"

// Coordinate is an immutable geographic position in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Valid reports whether c falls within the legal lat/lon ranges.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

const earthRadiusM = 6371000.0

// GreatCircleMeters returns the haversine distance between c and other, in
// meters. Used for the DEFAULT_AVG_SPEED_KPH fallback travel-time estimate,
// for nearest-node lookups, for route distance totals, and for fast-mode
// candidate ranking.
func (c Coordinate) GreatCircleMeters(other Coordinate) float64 {
	lat1 := c.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - c.Lat) * math.Pi / 180
	dLon := (other.Lon - c.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c2 := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c2
}

// BearingDegrees returns the initial compass bearing from c to other, in
// degrees [0, 360).
func (c Coordinate) BearingDegrees(other Coordinate) float64 {
	lat1 := c.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLon := (other.Lon - c.Lon) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	theta := math.Atan2(y, x) * 180 / math.Pi

	return math.Mod(theta+360, 360)
}
