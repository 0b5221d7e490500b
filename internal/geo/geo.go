// Package geo содержит чистые геодезические функции для отображения
// расстояния до контрольной точки и рекомендательной проверки близости.
// Функции не имеют состояния и безопасны для конкурентного вызова.
package geo

import "math"

// earthRadiusMeters радиус сферы для haversine-формулы
const earthRadiusMeters = 6371000.0

// DistanceMeters возвращает расстояние по большому кругу между двумя
// точками (haversine). Симметрична; для совпадающих точек возвращает 0.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// BearingDegrees возвращает начальный азимут от первой точки ко второй,
// нормализованный в [0, 360).
func BearingDegrees(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dLambda := radians(lon2 - lon1)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)

	theta := math.Atan2(y, x)
	deg := math.Mod(theta*180/math.Pi+360, 360)
	return deg
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
