package ecs

import (
	"github.com/phanxgames/parallax"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// TriggerEventType is the Donburi event type for parallax trigger events.
// Subscribe to this in your ECS systems to react to sections scrolling in
// and out of view.
var TriggerEventType = events.NewEventType[parallax.TriggerEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world.
// Trigger events are published to TriggerEventType and can be consumed
// with events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) parallax.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitTrigger(event parallax.TriggerEvent) {
	TriggerEventType.Publish(s.world, event)
}
