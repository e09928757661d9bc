// Package ecs provides ECS adapters for trellis.
package ecs

import (
	"github.com/phanxgames/trellis"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InteractionEventType is the Donburi event type for trellis interaction
// events. Subscribe to this in your ECS systems to receive pointer, drag,
// pinch, and focus events.
var InteractionEventType = events.NewEventType[trellis.InteractionEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EventStore backed by a Donburi world.
// Interaction events are published to InteractionEventType and can be
// consumed with events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) trellis.EventStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event trellis.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
}
