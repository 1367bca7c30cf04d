package metric

import (
	"math"

	"github.com/ar90n/kdtree/number"
)

// EarthRadius is the mean earth radius in meters used by Haversine.
const EarthRadius = 6371008.8

func SqEuclidean[T number.Number](lhs, rhs []T) float64 {
	return number.CalcSqDist(lhs, rhs)
}

func Euclidean[T number.Number](lhs, rhs []T) float64 {
	return math.Sqrt(number.CalcSqDist(lhs, rhs))
}

func Manhattan[T number.Number](lhs, rhs []T) float64 {
	return number.CalcAbsDist(lhs, rhs)
}

// Haversine is the great-circle distance in meters between two
// [longitude, latitude] pairs given in degrees.
func Haversine(lhs, rhs []float64) float64 {
	lng1, lat1 := toRadians(lhs[0]), toRadians(lhs[1])
	lng2, lat2 := toRadians(rhs[0]), toRadians(rhs[1])

	sinLat := math.Sin((lat2 - lat1) / 2)
	sinLng := math.Sin((lng2 - lng1) / 2)
	a := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return 2 * EarthRadius * math.Asin(math.Min(1, math.Sqrt(a)))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// OnKeys lifts a metric over coordinate slices to records keyed by field
// name. Only the listed keys are compared, in the order given.
func OnKeys[T number.Number](m func(lhs, rhs []T) float64, keys ...string) func(lhs, rhs map[string]T) float64 {
	return func(lhs, rhs map[string]T) float64 {
		l := make([]T, len(keys))
		r := make([]T, len(keys))
		for i, key := range keys {
			l[i] = lhs[key]
			r[i] = rhs[key]
		}
		return m(l, r)
	}
}

// ByName resolves the metric names accepted by the command line tool.
func ByName(name string) (func(lhs, rhs []float64) float64, bool) {
	switch name {
	case "euclidean":
		return Euclidean[float64], true
	case "sq-euclidean":
		return SqEuclidean[float64], true
	case "manhattan":
		return Manhattan[float64], true
	case "haversine":
		return Haversine, true
	default:
		return nil, false
	}
}
