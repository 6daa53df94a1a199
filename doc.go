// Package busbridge reconciles a watch/timeout-registration style bus
// library with a host event loop that multiplexes descriptors through a
// unified per-descriptor readiness poll.
//
// # The two models
//
// The bus library assumes it may register one or two independent watch
// objects per descriptor (read interest and write interest), add, remove,
// and toggle them at arbitrary times, and never announces a descriptor
// close: the watch set emptying is the only observable signal that a
// descriptor is going away. The host loop thinks in descriptors: one
// registration, one interest mask, explicit insertion and removal.
//
// # Shadow records
//
// The bridge keeps the models consistent with a derived per-descriptor
// "shadow record" whose existence and poll mask are computed from the live
// watch set. A record is created lazily on the first watch registration
// for an unknown descriptor and registered with the host loop; its
// interest mask is recomputed as the union of watch flags on every add and
// remove; and it is destroyed when the close condition holds: no live
// watches, hangup observed, no outstanding timers, and no queued dispatch
// work. If the descriptor stays alive and later asks to wait again, a
// fresh shadow record is created.
//
// # Usage
//
//	bridge, err := busbridge.New(hostLoop, busbridge.WithLogger(logger))
//	// ...
//	session, err := bridge.SetupConnection(conn, func(s *busbridge.Session) {
//	    // connection fully torn down
//	})
//
// The host loop delivers readiness via [Bridge.HandleReady] and drives
// timers via [Bridge.Tick]. The bus library drives everything else
// through the hooks installed by [Bridge.SetupConnection] and
// [Bridge.SetupListener].
//
// # Concurrency
//
// One Bridge serves one host-loop partition. A single coarse partition
// lock guards all shadow record and timer registry state; bus callbacks
// are always invoked with the lock released, so they may re-enter the
// watch and timeout surfaces. No operation blocks or suspends.
package busbridge
