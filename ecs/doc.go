// Package ecs provides ECS adapters for trellis's interaction event system.
//
// The primary adapter is [NewDonburiStore], which bridges trellis interaction
// events (pointer, click, drag, pinch, focus) into a [Donburi] world as typed
// events. Subscribe to [InteractionEventType] in your ECS systems to receive
// them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	stage.SetEventStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
