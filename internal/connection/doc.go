// Package connection implements the live activity feed Connection Manager.
//
// The Connection Manager:
//   - Owns exactly one logical WebSocket connection to the feed
//   - Never has more than one transport Connecting or Open at a time
//   - Reconnects after every closure according to a ReconnectPolicy
//     (fixed 5s delay, forever, by default)
//   - Dispatches each inbound payload, in arrival order, to every registered consumer
//
// State machine:
//
//	Idle --Connect()--> Connecting --open--> Open --close/error--> Closed
//	Closed --(policy delay)--> Connecting
//	Connecting/Open --Disconnect()--> Closed
package connection
