package geo

import "fmt"

// ExtractWKT finds the WKT geometry for a normalized asset record, trying
// each source in the priority order spec §4.6 defines. obj is the
// top-level normalized map (namespace buckets already split out by the
// Asset Transformer). Returns ("", false) if no source matches.
func ExtractWKT(obj map[string]interface{}) (string, bool) {
	if wkt, ok := fromGeometrieLog(obj); ok {
		return wkt, true
	}
	if wkt, ok := fromLocatieGeometrie(obj); ok {
		return wkt, true
	}
	if wkt, ok := fromPuntlocatie(obj, "DtcCoord_lambert72", "DtcCoordLambert72"); ok {
		return wkt, true
	}
	if wkt, ok := fromPuntlocatie(obj, "DtcCoord_lambert2008", "DtcCoordLambert2008"); ok {
		return wkt, true
	}
	return "", false
}

func fromGeometrieLog(obj map[string]interface{}) (string, bool) {
	geoBucket, ok := obj["geo"].(map[string]interface{})
	if !ok {
		return "", false
	}
	logEntries, ok := geoBucket["Geometrie_log"].([]interface{})
	if !ok || len(logEntries) == 0 {
		return "", false
	}
	first, ok := logEntries[0].(map[string]interface{})
	if !ok {
		return "", false
	}
	wkt, ok := first["DtcLog_geometrie"].(string)
	if !ok || wkt == "" {
		return "", false
	}
	return wkt, true
}

func fromLocatieGeometrie(obj map[string]interface{}) (string, bool) {
	locBucket, ok := obj["loc"].(map[string]interface{})
	if !ok {
		return "", false
	}
	wkt, ok := locBucket["Locatie_geometrie"].(string)
	if !ok || wkt == "" {
		return "", false
	}
	return wkt, true
}

// fromPuntlocatie reads a point geometry out of the Lambert72/Lambert2008
// coordinate container named coordField, whose x/y/z sub-fields are prefixed
// coordPrefix (e.g. container "DtcCoord_lambert72" holds
// "DtcCoordLambert72_xcoordinaat"/"_ycoordinaat"/"_zcoordinaat" — the real
// upstream field shape, not a generic "DtcCoordinaat_*" name).
func fromPuntlocatie(obj map[string]interface{}, coordField, coordPrefix string) (string, bool) {
	locBucket, ok := obj["loc"].(map[string]interface{})
	if !ok {
		return "", false
	}
	puntlocatie, ok := locBucket["Locatie_puntlocatie"].(map[string]interface{})
	if !ok {
		return "", false
	}
	puntgeometrie, ok := puntlocatie["3Dpunt_puntgeometrie"].(map[string]interface{})
	if !ok {
		return "", false
	}
	coord, ok := puntgeometrie[coordField].(map[string]interface{})
	if !ok {
		return "", false
	}
	x, xok := asFloat(coord[coordPrefix+"_xcoordinaat"])
	y, yok := asFloat(coord[coordPrefix+"_ycoordinaat"])
	z, zok := asFloat(coord[coordPrefix+"_zcoordinaat"])
	if !xok || !yok {
		return "", false
	}
	if !zok {
		z = 0
	}
	return fmt.Sprintf("POINT Z (%v %v %v)", x, y, z), true
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
