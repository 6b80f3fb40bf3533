// Package telemetry provides population health tracking, bookmarking, and
// experiment output.
package telemetry

import "github.com/pthm-cable/shoal/components"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventBirth EventType = iota
	EventDeath
	EventReproduction
	EventPlanktonEaten
	EventFishEaten
	EventRespawn
)

// Event represents a single telemetry event.
type Event struct {
	Type     EventType
	Tick     int32
	EntityID uint32

	// Optional fields depending on event type
	TargetID uint32                // partner, prey, or parent
	Cause    components.DeathCause // death events
	Amount   float64               // fat transferred
}

// NewBirthEvent creates a birth event.
func NewBirthEvent(tick int32, childID, parentID uint32) Event {
	return Event{
		Type:     EventBirth,
		Tick:     tick,
		EntityID: childID,
		TargetID: parentID, // parent ID stored in TargetID
	}
}

// NewDeathEvent creates a death event.
func NewDeathEvent(tick int32, entityID uint32, cause components.DeathCause) Event {
	return Event{
		Type:     EventDeath,
		Tick:     tick,
		EntityID: entityID,
		Cause:    cause,
	}
}

// NewReproductionEvent records parent A paying for an offspring with partner B.
func NewReproductionEvent(tick int32, parentA, parentB uint32, cost float64) Event {
	return Event{
		Type:     EventReproduction,
		Tick:     tick,
		EntityID: parentA,
		TargetID: parentB,
		Amount:   cost,
	}
}

// NewPlanktonEatenEvent creates a plankton consumption event.
func NewPlanktonEatenEvent(tick int32, fishID uint32, gain float64) Event {
	return Event{
		Type:     EventPlanktonEaten,
		Tick:     tick,
		EntityID: fishID,
		Amount:   gain,
	}
}

// NewFishEatenEvent creates a predation event.
func NewFishEatenEvent(tick int32, predatorID, preyID uint32, gain float64) Event {
	return Event{
		Type:     EventFishEaten,
		Tick:     tick,
		EntityID: predatorID,
		TargetID: preyID,
		Amount:   gain,
	}
}

// NewRespawnEvent records a fish injected by the respawner.
func NewRespawnEvent(tick int32, fishID uint32) Event {
	return Event{
		Type:     EventRespawn,
		Tick:     tick,
		EntityID: fishID,
	}
}
