package orchestrator

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/autobreezebeats/breeze-hub-go/internal/catalog"
	"github.com/autobreezebeats/breeze-hub-go/internal/config"
	"github.com/autobreezebeats/breeze-hub-go/internal/devices"
	"github.com/autobreezebeats/breeze-hub-go/internal/hub"
	"github.com/autobreezebeats/breeze-hub-go/internal/playback"
	"github.com/autobreezebeats/breeze-hub-go/internal/telemetry"
	"github.com/autobreezebeats/breeze-hub-go/internal/weather"
)

// Core is the serialized heart of the service. One goroutine owns the queue,
// transport, device tracker, and autoplay selector; everything else talks to
// it through the bounded event channel. Handlers block on their own I/O
// (resolution, backend calls) before handing results to the loop, so the loop
// itself never waits on the network.
type Core struct {
	logger  *log.Logger
	metrics *telemetry.Metrics

	events chan event

	queue       *playback.Queue
	transport   *playback.Transport
	tracker     *devices.Tracker
	selector    *playback.Selector
	broadcaster *hub.Broadcaster
	provider    catalog.Provider
	backend     devices.Backend
	repo        *devices.Repository
	settings    *Settings

	weather     weather.Snapshot
	weatherSeen bool

	autoplay        bool
	autoplayPending bool
	idleSec         int

	tickInterval    time.Duration
	tickAccum       time.Duration
	autoplayIdleSec int
	resolveTimeout  time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewCore wires the loop's collaborators. repo and settings may be nil in
// tests.
func NewCore(
	cfg *config.Config,
	provider catalog.Provider,
	selector *playback.Selector,
	backend devices.Backend,
	repo *devices.Repository,
	settings *Settings,
	broadcaster *hub.Broadcaster,
	metrics *telemetry.Metrics,
	logger *log.Logger,
) *Core {
	if logger == nil {
		logger = log.Default()
	}
	return &Core{
		logger:          logger,
		metrics:         metrics,
		events:          make(chan event, cfg.EventBufferSize),
		queue:           playback.NewQueue(),
		transport:       playback.NewTransport(),
		tracker:         devices.NewTracker(),
		selector:        selector,
		broadcaster:     broadcaster,
		provider:        provider,
		backend:         backend,
		repo:            repo,
		settings:        settings,
		autoplay:        settings.Autoplay(),
		tickInterval:    time.Duration(cfg.TickIntervalMs) * time.Millisecond,
		autoplayIdleSec: cfg.AutoplayIdleSec,
		resolveTimeout:  time.Duration(cfg.ResolveTimeoutMs) * time.Millisecond,
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
	}
}

// Start launches the loop and the backend notification forwarder.
func (c *Core) Start() {
	go c.run()
	go c.forwardNotifications()
}

// Stop shuts the loop down and waits for it to drain.
func (c *Core) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

func (c *Core) run() {
	defer close(c.done)

	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.metrics.IncEvents()
			c.handleTick()
		case ev := <-c.events:
			c.metrics.IncEvents()
			c.dispatch(ev)
		}
	}
}

func (c *Core) forwardNotifications() {
	for {
		select {
		case <-c.stop:
			return
		case list, ok := <-c.backend.Notifications():
			if !ok {
				return
			}
			c.push(deviceListEvent{devices: list})
		}
	}
}

// push delivers an event to the loop, giving up on shutdown.
func (c *Core) push(ev event) {
	select {
	case c.events <- ev:
	case <-c.stop:
	}
}

func (c *Core) dispatch(ev event) {
	switch ev := ev.(type) {
	case attachEvent:
		c.handleAttach(ev.session)
	case detachEvent:
		c.broadcaster.Unregister(ev.session)
		c.metrics.SetSessions(c.broadcaster.Count())
	case commandEvent:
		c.handleCommand(ev.sessionID, ev.command)
	case enqueueEvent:
		c.handleEnqueue(ev.video)
	case autoplayResolvedEvent:
		c.handleAutoplayResolved(ev)
	case weatherEvent:
		c.weather = ev.snapshot
		c.weatherSeen = true
		info := hub.NewWeatherInfo(ev.snapshot, time.Now())
		c.publish(hub.Delta{Weather: &info})
	case deviceListEvent:
		c.handleDeviceList(ev.devices)
	case devicePrimaryEvent:
		if err := c.tracker.ConfirmPrimary(ev.address); err != nil {
			c.logger.Printf("Primary confirmation for unknown device %s dropped", ev.address)
			return
		}
		c.publishDevices()
	case toggleAutoplayEvent:
		c.autoplay = !c.autoplay
		c.idleSec = 0
		c.settings.SaveAutoplay(c.autoplay)
		enabled := c.autoplay
		c.publish(hub.Delta{Autoplay: &enabled})
		ev.reply <- enabled
	case stateQueryEvent:
		ev.reply <- c.snapshotDelta()
	case devicesQueryEvent:
		ev.reply <- c.tracker.Snapshot()
	case deviceCheckEvent:
		_, ok := c.tracker.Find(ev.address)
		ev.reply <- ok
	case transportStateEvent:
		ev.reply <- c.transport.State()
	case weatherQueryEvent:
		ev.reply <- weatherReply{snapshot: c.weather, captured: c.weatherSeen}
	default:
		c.logger.Printf("Dropped unknown event %T", ev)
	}
}

func (c *Core) handleTick() {
	// Sub-second intervals accumulate until a whole second has elapsed, so
	// the transport and idle timer always advance in integer seconds.
	c.tickAccum += c.tickInterval
	dt := int(c.tickAccum / time.Second)
	if dt == 0 {
		return
	}
	c.tickAccum -= time.Duration(dt) * time.Second

	prevChapter := c.transport.ChapterIndex()
	completed, changed := c.transport.Tick(dt)

	if completed {
		c.metrics.IncTracksCompleted()
		c.advance()
		return
	}
	if changed {
		elapsed := c.transport.Elapsed()
		delta := hub.Delta{Elapsed: &elapsed}
		if c.transport.ChapterIndex() != prevChapter {
			delta.CurrentChapter = c.chapterInfo()
		}
		c.publish(delta)
		return
	}

	if c.transport.State() == playback.StateIdle && c.autoplay && !c.autoplayPending {
		c.idleSec += dt
		if c.idleSec >= c.autoplayIdleSec {
			c.triggerAutoplay()
		}
	}
}

// advance moves to the next queued video, or hands over to autoplay, or goes
// idle. Called on track completion and skip.
func (c *Core) advance() {
	entry, err := c.queue.Advance()
	if err == nil {
		c.loadAndPlay(entry.Video)
		return
	}

	c.transport.Reset()
	c.publish(c.playbackDelta())
	if c.autoplay {
		c.triggerAutoplay()
	}
}

func (c *Core) loadAndPlay(video catalog.Video) {
	c.transport.Load(video)
	c.transport.Play()
	c.idleSec = 0
	c.publish(c.playbackDelta())
}

func (c *Core) handleEnqueue(video catalog.Video) {
	if c.transport.State() == playback.StateIdle {
		c.loadAndPlay(video)
		return
	}
	c.queue.Enqueue(video)
	queue := c.queueInfos()
	c.publish(hub.Delta{Queue: &queue})
}

func (c *Core) handleAttach(session *hub.Session) {
	// The snapshot lands in the mailbox before registration, so it precedes
	// every later delta for this session.
	session.Enqueue(c.snapshotDelta())
	c.broadcaster.Register(session)
	c.metrics.SetSessions(c.broadcaster.Count())
}

func (c *Core) handleCommand(sessionID, command string) {
	switch command {
	case "play":
		if c.transport.State() == playback.StateIdle {
			if entry, err := c.queue.Advance(); err == nil {
				c.loadAndPlay(entry.Video)
			}
			return
		}
		if c.transport.Play() {
			playing := true
			c.publish(hub.Delta{Playing: &playing})
		}
	case "pause":
		if c.transport.Pause() {
			playing := false
			c.publish(hub.Delta{Playing: &playing})
		}
	case "skip", "next_video":
		if c.transport.Video() != nil {
			c.advance()
		}
	case "next_chapter":
		if c.transport.NextChapter() {
			elapsed := c.transport.Elapsed()
			c.publish(hub.Delta{Elapsed: &elapsed, CurrentChapter: c.chapterInfo()})
		}
	case "prev_chapter":
		if c.transport.PrevChapter() {
			elapsed := c.transport.Elapsed()
			c.publish(hub.Delta{Elapsed: &elapsed, CurrentChapter: c.chapterInfo()})
		}
	default:
		c.logger.Printf("Session %s sent unknown command %q", sessionID, command)
	}
}

// triggerAutoplay picks a curated entry and resolves it off-loop. At most one
// resolution is in flight.
func (c *Core) triggerAutoplay() {
	if c.autoplayPending {
		return
	}

	now := time.Now()
	snapshot := c.weather
	if !c.weatherSeen {
		snapshot = weather.Default(now)
	}
	entry, ok := c.selector.Pick(snapshot, now, c.weatherSeen)
	if !ok {
		c.logger.Printf("Autoplay enabled but the curated catalog is empty")
		c.idleSec = 0
		return
	}

	c.autoplayPending = true
	c.idleSec = 0
	c.logger.Printf("Autoplay resolving %s", entry.URL)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.resolveTimeout)
		defer cancel()
		video, err := c.provider.Resolve(ctx, entry.URL)
		c.push(autoplayResolvedEvent{video: video, err: err})
	}()
}

func (c *Core) handleAutoplayResolved(ev autoplayResolvedEvent) {
	c.autoplayPending = false
	if ev.err != nil {
		// The idle timer restarts and retries on its own.
		c.logger.Printf("Autoplay resolution failed: %v", ev.err)
		return
	}
	if c.transport.State() != playback.StateIdle {
		c.logger.Printf("Autoplay pick %q discarded, playback resumed meanwhile", ev.video.Title)
		return
	}
	c.metrics.IncAutoplayPicks()
	c.loadAndPlay(ev.video)
}

func (c *Core) handleDeviceList(list []devices.Device) {
	c.tracker.Apply(list)
	c.publishDevices()

	if c.repo == nil {
		return
	}
	for _, device := range list {
		if !device.Connected {
			continue
		}
		go func(d devices.Device) {
			if err := c.repo.Remember(d); err != nil {
				c.logger.Printf("Failed to remember device %s: %v", d.Address, err)
			}
		}(device)
	}
}

func (c *Core) publishDevices() {
	snapshot := c.tracker.Snapshot()
	c.publish(hub.Delta{Devices: &snapshot})
}

func (c *Core) publish(delta hub.Delta) {
	if delta.Empty() {
		return
	}
	c.metrics.IncDeltas()
	c.broadcaster.Publish(delta)
}

// playbackDelta covers every playback-owned field, for load and reset
// transitions.
func (c *Core) playbackDelta() hub.Delta {
	elapsed := c.transport.Elapsed()
	duration := c.transport.Duration()
	playing := c.transport.Playing()
	queue := c.queueInfos()

	delta := hub.Delta{
		Elapsed:  &elapsed,
		Duration: &duration,
		Playing:  &playing,
		Queue:    &queue,
	}
	if video := c.transport.Video(); video != nil {
		delta.Current = hub.NewVideoInfo(*video)
		hasChapters := video.HasChapters()
		delta.Chapters = &hasChapters
		delta.CurrentChapter = c.chapterInfo()
	} else {
		delta.Current = false
		hasChapters := false
		delta.Chapters = &hasChapters
	}
	return delta
}

func (c *Core) snapshotDelta() hub.Delta {
	delta := c.playbackDelta()

	autoplay := c.autoplay
	delta.Autoplay = &autoplay

	snapshot := c.tracker.Snapshot()
	delta.Devices = &snapshot

	if c.weatherSeen {
		info := hub.NewWeatherInfo(c.weather, time.Now())
		delta.Weather = &info
	}
	return delta
}

func (c *Core) chapterInfo() *hub.ChapterInfo {
	chapter, ok := c.transport.CurrentChapter()
	if !ok {
		return nil
	}
	return &hub.ChapterInfo{Title: chapter.Title, Time: chapter.Start}
}

func (c *Core) queueInfos() []hub.VideoInfo {
	infos := make([]hub.VideoInfo, 0, c.queue.Len())
	for entry := range c.queue.Peek(c.queue.Len()) {
		infos = append(infos, hub.NewVideoInfo(entry.Video))
	}
	return infos
}

// Attach registers a session with the loop. Implements hub.SessionSink.
func (c *Core) Attach(session *hub.Session) { c.push(attachEvent{session: session}) }

// Detach removes a session. Implements hub.SessionSink.
func (c *Core) Detach(session *hub.Session) { c.push(detachEvent{session: session}) }

// Command forwards an inbound session command. Implements hub.SessionSink.
func (c *Core) Command(sessionID, command string) {
	c.push(commandEvent{sessionID: sessionID, command: command})
}

// AddVideo hands a resolved video to the loop.
func (c *Core) AddVideo(video catalog.Video) { c.push(enqueueEvent{video: video}) }

// UpdateWeather installs a fresh snapshot. Wired as the poller sink.
func (c *Core) UpdateWeather(snapshot weather.Snapshot) { c.push(weatherEvent{snapshot: snapshot}) }

// ConfirmPrimary records a backend-confirmed primary sink change.
func (c *Core) ConfirmPrimary(address string) { c.push(devicePrimaryEvent{address: address}) }

// ToggleAutoplay flips the autoplay flag and returns the new value.
func (c *Core) ToggleAutoplay() bool {
	reply := make(chan bool, 1)
	c.push(toggleAutoplayEvent{reply: reply})
	select {
	case enabled := <-reply:
		return enabled
	case <-c.stop:
		return false
	}
}

// State returns a full snapshot delta.
func (c *Core) State() hub.Delta {
	reply := make(chan hub.Delta, 1)
	c.push(stateQueryEvent{reply: reply})
	select {
	case delta := <-reply:
		return delta
	case <-c.stop:
		return hub.Delta{}
	}
}

// Devices returns the tracked device list.
func (c *Core) Devices() []devices.Device {
	reply := make(chan []devices.Device, 1)
	c.push(devicesQueryEvent{reply: reply})
	select {
	case list := <-reply:
		return list
	case <-c.stop:
		return nil
	}
}

// KnownDevice reports whether the tracker has seen the address.
func (c *Core) KnownDevice(address string) bool {
	reply := make(chan bool, 1)
	c.push(deviceCheckEvent{address: address, reply: reply})
	select {
	case ok := <-reply:
		return ok
	case <-c.stop:
		return false
	}
}

// TransportState returns the transport machine state.
func (c *Core) TransportState() playback.State {
	reply := make(chan playback.State, 1)
	c.push(transportStateEvent{reply: reply})
	select {
	case state := <-reply:
		return state
	case <-c.stop:
		return playback.StateIdle
	}
}

// Weather returns the latest snapshot and whether one was ever captured.
func (c *Core) Weather() (weather.Snapshot, bool) {
	reply := make(chan weatherReply, 1)
	c.push(weatherQueryEvent{reply: reply})
	select {
	case r := <-reply:
		return r.snapshot, r.captured
	case <-c.stop:
		return weather.Snapshot{}, false
	}
}
