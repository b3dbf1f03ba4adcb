package models

// PickupPoint is a named handover location. Drop points share the shape.
type PickupPoint struct {
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	Coordinates Coordinates `json:"coordinates"`
}

// Coordinates are optional on pickup points.
type Coordinates struct {
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`
}

// Clone returns a deep copy of the point, so mirrored lists never share state.
func (p PickupPoint) Clone() PickupPoint {
	out := p
	if p.Coordinates.Lat != nil {
		lat := *p.Coordinates.Lat
		out.Coordinates.Lat = &lat
	}
	if p.Coordinates.Lng != nil {
		lng := *p.Coordinates.Lng
		out.Coordinates.Lng = &lng
	}
	return out
}

// ClonePoints deep-copies a list of points. A nil list stays nil.
func ClonePoints(points []PickupPoint) []PickupPoint {
	if points == nil {
		return nil
	}
	out := make([]PickupPoint, len(points))
	for i, p := range points {
		out[i] = p.Clone()
	}
	return out
}
