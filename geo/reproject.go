// Package geo extracts WKT geometry from asset records and reprojects it
// from EPSG:3812 (ETRS89 / Belgian Lambert 2008) to EPSG:4326 (WGS84), the
// one piece of the pipeline with no corresponding third-party library
// anywhere in the example corpus (see DESIGN.md) — it is implemented with
// the Lambert Conformal Conic (2SP) formulas against the GRS80 ellipsoid,
// using only the math package.
package geo

import "math"

// Belgian Lambert 2008 (EPSG:3812) projection parameters, GRS80 ellipsoid.
const (
	grs80SemiMajorAxis = 6378137.0
	grs80Flattening    = 1.0 / 298.257222101

	lat1Deg = 49.833333333333
	lat2Deg = 51.166666666667
	lat0Deg = 50.797815555556
	lon0Deg = 4.359215555556

	falseEasting  = 649328.0
	falseNorthing = 665262.0
)

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
func rad2deg(r float64) float64 { return r * 180 / math.Pi }

func eccentricity(f float64) float64 {
	return math.Sqrt(2*f - f*f)
}

func lccM(phi, e float64) float64 {
	sinPhi := math.Sin(phi)
	return math.Cos(phi) / math.Sqrt(1-e*e*sinPhi*sinPhi)
}

func lccT(phi, e float64) float64 {
	sinPhi := math.Sin(phi)
	return math.Tan(math.Pi/4-phi/2) / math.Pow((1-e*sinPhi)/(1+e*sinPhi), e/2)
}

// lambert2008Inverse converts easting/northing in EPSG:3812 to
// (longitude, latitude) in EPSG:4326, both in decimal degrees.
func lambert2008Inverse(easting, northing float64) (lon, lat float64) {
	e := eccentricity(grs80Flattening)
	phi1 := deg2rad(lat1Deg)
	phi2 := deg2rad(lat2Deg)
	phi0 := deg2rad(lat0Deg)
	lambda0 := deg2rad(lon0Deg)

	m1 := lccM(phi1, e)
	m2 := lccM(phi2, e)
	t1 := lccT(phi1, e)
	t2 := lccT(phi2, e)
	t0 := lccT(phi0, e)

	n := (math.Log(m1) - math.Log(m2)) / (math.Log(t1) - math.Log(t2))
	f := m1 / (n * math.Pow(t1, n))
	rho0 := grs80SemiMajorAxis * f * math.Pow(t0, n)

	x := easting - falseEasting
	y := rho0 - (northing - falseNorthing)

	rho := math.Copysign(math.Sqrt(x*x+y*y), n)
	theta := math.Atan2(x, y)

	t := math.Pow(rho/(grs80SemiMajorAxis*f), 1/n)

	phi := math.Pi/2 - 2*math.Atan(t)
	for i := 0; i < 8; i++ {
		sinPhi := math.Sin(phi)
		phi = math.Pi/2 - 2*math.Atan(t*math.Pow((1-e*sinPhi)/(1+e*sinPhi), e/2))
	}

	lambda := theta/n + lambda0
	return rad2deg(lambda), rad2deg(phi)
}

// ReprojectPoint converts a single (x, y) pair in EPSG:3812 to WGS84
// (lon, lat). The z coordinate, if any, passes through unchanged since
// Belgian Lambert 2008 and WGS84 share a compatible vertical datum for this
// pipeline's purposes.
func ReprojectPoint(x, y float64) (lon, lat float64) {
	return lambert2008Inverse(x, y)
}
