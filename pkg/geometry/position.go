package geometry

// ProjectPosition is the host's project base point and true-north rotation.
// Origin is expressed in host units; Angle is in radians around the vertical axis.
type ProjectPosition struct {
	Origin Vector3
	Angle  float64
}

// WorldToHost rotates a BCF world point by -Angle about the vertical axis and then
// subtracts Origin. Every imported camera and plane coordinate passes through here.
func (p ProjectPosition) WorldToHost(point Vector3) Vector3 {
	return point.RotateZ(-p.Angle).Sub(p.Origin)
}

// HostToWorld is the inverse of WorldToHost
func (p ProjectPosition) HostToWorld(point Vector3) Vector3 {
	return point.Add(p.Origin).RotateZ(p.Angle)
}

// DirectionToHost rotates a free vector into host space; directions are not translated
func (p ProjectPosition) DirectionToHost(direction Vector3) Vector3 {
	return direction.RotateZ(-p.Angle)
}

// DirectionToWorld is the inverse of DirectionToHost
func (p ProjectPosition) DirectionToWorld(direction Vector3) Vector3 {
	return direction.RotateZ(p.Angle)
}

// Frame combines the project position with the host length unit. It maps BCF
// world coordinates (meters) to host coordinates and back.
type Frame struct {
	Position ProjectPosition
	Unit     Unit
}

func (f Frame) unit() Unit {
	if f.Unit.PerMeter == 0 {
		return Meters
	}
	return f.Unit
}

// PointToHost converts a BCF point to host units and then into the host frame
func (f Frame) PointToHost(p Vector3) Vector3 {
	return f.Position.WorldToHost(f.unit().PointFromMeters(p))
}

// PointToWorld is the inverse of PointToHost
func (f Frame) PointToWorld(p Vector3) Vector3 {
	return f.unit().PointToMeters(f.Position.HostToWorld(p))
}

// DirectionToHost rotates a BCF direction into the host frame
func (f Frame) DirectionToHost(d Vector3) Vector3 {
	return f.Position.DirectionToHost(d)
}

// DirectionToWorld is the inverse of DirectionToHost
func (f Frame) DirectionToWorld(d Vector3) Vector3 {
	return f.Position.DirectionToWorld(d)
}

// LengthToHost converts a BCF length to host units
func (f Frame) LengthToHost(v float64) float64 {
	return f.unit().FromMeters(v)
}

// LengthToWorld converts a host length to BCF meters
func (f Frame) LengthToWorld(v float64) float64 {
	return f.unit().ToMeters(v)
}
