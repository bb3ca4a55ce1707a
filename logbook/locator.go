// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package logbook

import (
	"fmt"
	"math"
)

// EncodeLocator returns the six character Maidenhead locator (for example
// "JO70ab") of a latitude/longitude pair in degrees.
func EncodeLocator(lat, long float64) (string, error) {
	if math.IsNaN(lat) || math.IsNaN(long) || lat < -90 || lat > 90 || long < -180 || long > 180 {
		return "", fmt.Errorf("encode locator: coordinates out of range: %v, %v", lat, long)
	}

	// the north pole and the antimeridian fold into the last square
	lon := math.Min(long+180, 360-1e-9)
	la := math.Min(lat+90, 180-1e-9)

	b := []byte{
		'A' + byte(lon/20),
		'A' + byte(la/10),
		'0' + byte(math.Mod(lon, 20)/2),
		'0' + byte(math.Mod(la, 10)),
		'a' + byte(math.Mod(lon, 2)*12),
		'a' + byte(math.Mod(la, 1)*24),
	}
	return string(b), nil
}
