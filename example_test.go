package busbridge_test

import (
	"fmt"
	"time"

	busbridge "github.com/joeycumines/go-busbridge"
	"github.com/joeycumines/go-busbridge/busbridgetest"
)

// Example_connectionLifecycle walks a connection from setup through
// readiness to hangup-driven teardown, using the in-memory fakes in
// place of a real bus library and poller.
func Example_connectionLifecycle() {
	loop := busbridgetest.NewHostLoop()

	bridge, err := busbridge.New(loop)
	if err != nil {
		fmt.Printf("failed to create bridge: %v\n", err)
		return
	}

	// The bus library announces its existing read watch as soon as the
	// hooks are installed.
	conn := busbridgetest.NewConnection()
	conn.InitialWatches = []*busbridgetest.Watch{
		{FD: 7, Interest: busbridge.WatchReadable},
	}

	_, err = bridge.SetupConnection(conn, func(*busbridge.Session) {
		fmt.Println("connection closed")
	})
	if err != nil {
		fmt.Printf("failed to set up connection: %v\n", err)
		return
	}

	fmt.Printf("fd 7 registered: %v\n", loop.Registered(7))
	fmt.Printf("fd 7 interest: %s\n", loop.Interest(7))

	// Inbound data: the host loop reports readiness, the bridge routes
	// it to the watch and drains the bus library's dispatch queue.
	conn.QueueWork(func() { fmt.Println("message dispatched") })
	bridge.HandleReady(loop.Registration(7), busbridge.PollReadable)

	// The peer hangs up. Once the bus library drops its last watch the
	// shadow record is destroyed and the closing callback fires.
	bridge.HandleReady(loop.Registration(7), busbridge.PollHangup)
	watchFns, _ := conn.Hooks()
	watchFns.Remove(conn.InitialWatches[0])

	fmt.Printf("fd 7 registered: %v\n", loop.Registered(7))

	// Output:
	// fd 7 registered: true
	// fd 7 interest: r
	// message dispatched
	// connection closed
	// fd 7 registered: false
}

// Example_timeout shows the bus library arming a timeout through the
// installed hooks, and the host loop's tick driving it.
func Example_timeout() {
	loop := busbridgetest.NewHostLoop()

	bridge, err := busbridge.New(loop)
	if err != nil {
		fmt.Printf("failed to create bridge: %v\n", err)
		return
	}

	conn := busbridgetest.NewConnection()
	if _, err := bridge.SetupConnection(conn, nil); err != nil {
		fmt.Printf("failed to set up connection: %v\n", err)
		return
	}

	timeout := &busbridgetest.Timeout{
		Delay:  2 * time.Second,
		OnFire: func() { fmt.Println("timeout fired") },
	}
	_, timeoutFns := conn.Hooks()
	timeoutFns.Add(timeout)

	// Too early: nothing fires.
	bridge.Tick(time.Now().Add(time.Second))
	fmt.Printf("fired: %d\n", timeout.Fired())

	bridge.Tick(time.Now().Add(5 * time.Second))
	fmt.Printf("fired: %d\n", timeout.Fired())

	// Output:
	// fired: 0
	// timeout fired
	// fired: 1
}
