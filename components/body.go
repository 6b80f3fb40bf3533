package components

// Body holds physical properties of an entity.
type Body struct {
	Radius float64 // bound radius, derived from mass
}

// Food marks a plankton particle.
type Food struct {
	Mass  float64
	Eaten bool // consumed this tick, removed at cleanup
}
