// Package components defines ECS components for the simulation.
package components

import "gonum.org/v1/gonum/spatial/r3"

// Position represents an entity's world position.
type Position struct {
	r3.Vec
}

// Velocity represents an entity's velocity in units per second.
type Velocity struct {
	r3.Vec
}

// Rotation holds the unit heading of a fish. It follows the velocity and
// keeps its last value while the fish is stationary.
type Rotation struct {
	Heading r3.Vec
}
