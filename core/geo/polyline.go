package geo

import (
	"fmt"
	"math"
	"strings"
)

// Encoded path representation compatible with the Google polyline algorithm at
// 1e-5 degree precision. Routes travel over the wire and into the decision log
// in this form instead of as coordinate arrays.

const polylinePrecision = 1e5

// EncodePolyline encodes the points as an ASCII polyline string.
func EncodePolyline(points []Point) string {
	var sb strings.Builder
	var prevLat, prevLng int64
	for _, p := range points {
		lat := int64(math.Round(p.Lat * polylinePrecision))
		lng := int64(math.Round(p.Lng * polylinePrecision))
		encodeValue(&sb, lat-prevLat)
		encodeValue(&sb, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return sb.String()
}

func encodeValue(sb *strings.Builder, v int64) {
	u := v << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		sb.WriteByte(byte(0x20|(u&0x1f)) + 63)
		u >>= 5
	}
	sb.WriteByte(byte(u) + 63)
}

// DecodePolyline decodes an encoded polyline string back into points.
func DecodePolyline(s string) ([]Point, error) {
	var points []Point
	var lat, lng int64
	i := 0
	for i < len(s) {
		dLat, n, err := decodeValue(s, i)
		if err != nil {
			return nil, err
		}
		i = n
		dLng, n, err := decodeValue(s, i)
		if err != nil {
			return nil, err
		}
		i = n
		lat += dLat
		lng += dLng
		points = append(points, Point{
			Lat: float64(lat) / polylinePrecision,
			Lng: float64(lng) / polylinePrecision,
		})
	}
	return points, nil
}

func decodeValue(s string, i int) (int64, int, error) {
	var u int64
	shift := uint(0)
	for {
		if i >= len(s) {
			return 0, i, fmt.Errorf("geo: truncated polyline at offset %d", i)
		}
		b := int64(s[i]) - 63
		if b < 0 {
			return 0, i, fmt.Errorf("geo: invalid polyline byte %q at offset %d", s[i], i)
		}
		i++
		u |= (b & 0x1f) << shift
		if b < 0x20 {
			break
		}
		shift += 5
	}
	v := u >> 1
	if u&1 != 0 {
		v = ^v
	}
	return v, i, nil
}
