// Package ecs provides ECS adapters for parallax's scroll trigger events.
//
// The primary adapter is [NewDonburiSink], which bridges trigger toggles
// (enter, leave, enterBack, leaveBack) into a [Donburi] world as typed
// events. Subscribe to [TriggerEventType] in your ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	page.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
