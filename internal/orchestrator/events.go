package orchestrator

import (
	"github.com/autobreezebeats/breeze-hub-go/internal/catalog"
	"github.com/autobreezebeats/breeze-hub-go/internal/devices"
	"github.com/autobreezebeats/breeze-hub-go/internal/hub"
	"github.com/autobreezebeats/breeze-hub-go/internal/playback"
	"github.com/autobreezebeats/breeze-hub-go/internal/weather"
)

// event is a message for the orchestrator loop. Every collaborator feeds the
// loop through one of these; the loop is the only goroutine that touches the
// queue, transport, tracker, and selector.
type event any

// attachEvent registers a new observer session.
type attachEvent struct {
	session *hub.Session
}

// detachEvent removes a disconnected session.
type detachEvent struct {
	session *hub.Session
}

// commandEvent carries one inbound text command from a session.
type commandEvent struct {
	sessionID string
	command   string
}

// enqueueEvent adds a resolved video to playback.
type enqueueEvent struct {
	video catalog.Video
}

// autoplayResolvedEvent completes an asynchronous autoplay resolution.
type autoplayResolvedEvent struct {
	video catalog.Video
	err   error
}

// weatherEvent installs a fresh weather snapshot.
type weatherEvent struct {
	snapshot weather.Snapshot
}

// deviceListEvent carries a backend device notification.
type deviceListEvent struct {
	devices []devices.Device
}

// devicePrimaryEvent records a backend-confirmed primary sink change.
type devicePrimaryEvent struct {
	address string
}

// toggleAutoplayEvent flips the autoplay flag and reports the new value.
type toggleAutoplayEvent struct {
	reply chan bool
}

// stateQueryEvent requests a full state snapshot.
type stateQueryEvent struct {
	reply chan hub.Delta
}

// devicesQueryEvent requests the tracked device list.
type devicesQueryEvent struct {
	reply chan []devices.Device
}

// deviceCheckEvent asks whether the tracker knows an address.
type deviceCheckEvent struct {
	address string
	reply   chan bool
}

// transportStateEvent requests the transport machine state.
type transportStateEvent struct {
	reply chan playback.State
}

// weatherQueryEvent requests the current weather snapshot.
type weatherQueryEvent struct {
	reply chan weatherReply
}

type weatherReply struct {
	snapshot weather.Snapshot
	captured bool
}
