package weather

import "math"

// KMA Lambert conformal conic projection parameters for the national
// observation grid.
const (
	gridEarthRadiusKm = 6371.00877
	gridSpacingKm     = 5.0
	projLat1          = 30.0  // first standard parallel
	projLat2          = 60.0  // second standard parallel
	projLonOrigin     = 126.0 // reference longitude
	projLatOrigin     = 38.0  // reference latitude
	gridOriginX       = 43.0  // grid X of the reference point
	gridOriginY       = 136.0 // grid Y of the reference point
)

// toGrid converts WGS84 coordinates to the provider's grid cell.
func toGrid(lat, lon float64) (int, int) {
	degrad := math.Pi / 180.0

	re := gridEarthRadiusKm / gridSpacingKm
	slat1 := projLat1 * degrad
	slat2 := projLat2 * degrad
	olon := projLonOrigin * degrad
	olat := projLatOrigin * degrad

	sn := math.Tan(math.Pi*0.25+slat2*0.5) / math.Tan(math.Pi*0.25+slat1*0.5)
	sn = math.Log(math.Cos(slat1)/math.Cos(slat2)) / math.Log(sn)
	sf := math.Tan(math.Pi*0.25 + slat1*0.5)
	sf = math.Pow(sf, sn) * math.Cos(slat1) / sn
	ro := math.Tan(math.Pi*0.25 + olat*0.5)
	ro = re * sf / math.Pow(ro, sn)

	ra := math.Tan(math.Pi*0.25 + lat*degrad*0.5)
	ra = re * sf / math.Pow(ra, sn)
	theta := lon*degrad - olon
	if theta > math.Pi {
		theta -= 2.0 * math.Pi
	}
	if theta < -math.Pi {
		theta += 2.0 * math.Pi
	}
	theta *= sn

	x := int(math.Floor(ra*math.Sin(theta) + gridOriginX + 0.5))
	y := int(math.Floor(ro - ra*math.Cos(theta) + gridOriginY + 0.5))
	return x, y
}
