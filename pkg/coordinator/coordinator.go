package coordinator

import (
	. "github.com/Krajiyah/ble-walkie/pkg/ble"
	"github.com/Krajiyah/ble-walkie/pkg/client"
	"github.com/Krajiyah/ble-walkie/pkg/location"
	"github.com/Krajiyah/ble-walkie/pkg/media"
	. "github.com/Krajiyah/ble-walkie/pkg/models"
	"github.com/Krajiyah/ble-walkie/pkg/server"
	"github.com/Krajiyah/ble-walkie/pkg/util"
	"github.com/pkg/errors"
)

var logger = util.NewLogger("coordinator")

var (
	// ErrPermissionRequired refuses a talk press until the microphone is allowed
	ErrPermissionRequired = errors.New("microphone permission required")
	// ErrNoPeer refuses a talk press while no peer is known
	ErrNoPeer = errors.New("no peer to talk to")
)

// Options are the collaborators of a SessionCoordinator
type Options struct {
	Name        string
	Central     Central
	Peripheral  Peripheral
	Loop        Dispatcher
	Sink        server.AudioSink
	Recorder    media.Recorder
	Permissions media.Permissions
	Locator     location.Provider
	Status      StatusListener
}

// SessionCoordinator turns talk presses into stream sessions and inbound
// location records into distance updates. All methods run on the event loop.
type SessionCoordinator struct {
	loop        Dispatcher
	scanner     *client.LinkScanner
	responder   *server.Responder
	recorder    media.Recorder
	permissions media.Permissions
	locator     location.Provider
	status      StatusListener
	current     Status
	session     *client.StreamSession
	talking     bool
	recording   bool
	localFix    *Fix
}

func New(opts Options) *SessionCoordinator {
	c := &SessionCoordinator{
		loop:        opts.Loop,
		recorder:    opts.Recorder,
		permissions: opts.Permissions,
		locator:     opts.Locator,
		status:      opts.Status,
		current:     Initializing,
	}
	c.scanner = client.NewLinkScanner(opts.Central, c)
	c.responder = server.NewResponder(opts.Name, opts.Peripheral, opts.Loop, opts.Sink, c)
	return c
}

// Scanner is the initiator side, the device delivers central events to it
func (c *SessionCoordinator) Scanner() *client.LinkScanner { return c.scanner }

// Responder is the listening side, it has to be registered as a radio listener
func (c *SessionCoordinator) Responder() *server.Responder { return c.responder }

func (c *SessionCoordinator) Status() Status { return c.current }

func (c *SessionCoordinator) publish(status Status) {
	if status == c.current {
		return
	}
	logger.Info("status changed", "from", c.current, "to", status)
	c.current = status
	if c.status != nil {
		c.status.OnStatusChanged(status)
	}
}

func (c *SessionCoordinator) OnUnsupported()     { c.publish(Unsupported) }
func (c *SessionCoordinator) OnAwaitingRadioOn() { c.publish(AwaitingRadioOn) }
func (c *SessionCoordinator) OnScanStarted()     { c.publish(Searching) }

func (c *SessionCoordinator) OnPeerFound(peer PeerHandle) {
	if c.session == nil {
		c.publish(PeerFound)
	}
}

// TalkPressed opens (or reuses) a session to the known peer and starts
// streaming once it is ready.
func (c *SessionCoordinator) TalkPressed() error {
	switch c.permissions.Status() {
	case PermissionGranted:
	case PermissionUndetermined:
		c.permissions.Request(func(p Permission) {
			c.loop.Post(func() { c.onPermission(p) })
		})
		return ErrPermissionRequired
	default:
		c.publish(PermissionRequired)
		return ErrPermissionRequired
	}
	if c.session != nil {
		return nil
	}
	session, err := c.scanner.AcquireSession()
	if err != nil {
		return errors.Wrap(ErrNoPeer, err.Error())
	}
	c.talking = true
	c.session = session
	session.SetListener(c)
	c.locator.RequestLocation(func(fix Fix) {
		c.loop.Post(func() { c.onLocalFix(fix) })
	})
	if session.State() == SessionReady {
		c.OnSessionReady(session.ID())
		return nil
	}
	c.publish(Connecting)
	return nil
}

func (c *SessionCoordinator) onPermission(p Permission) {
	if p != PermissionGranted {
		c.publish(PermissionRequired)
	}
}

// TalkReleased stops streaming and closes the session
func (c *SessionCoordinator) TalkReleased() {
	c.talking = false
	c.stopRecording()
	if c.session != nil {
		c.session.SetListener(nil)
		c.session.Close()
		c.session = nil
	}
	c.publishIdle()
}

func (c *SessionCoordinator) publishIdle() {
	if c.scanner.State() == LinkIdle {
		c.publish(PeerFound)
	}
}

func (c *SessionCoordinator) isCurrent(id string) bool {
	return c.session != nil && c.session.ID() == id
}

func (c *SessionCoordinator) OnSessionReady(id string) {
	if !c.isCurrent(id) {
		return
	}
	c.publish(Talking)
	if c.localFix != nil {
		c.session.SetLocation(*c.localFix)
	}
	if c.recording {
		return
	}
	err := c.recorder.Start(func(samples []float32) {
		c.loop.Post(func() { c.onFrame(samples) })
	})
	if err != nil {
		logger.Error("could not start recording", "err", err)
		return
	}
	c.recording = true
}

func (c *SessionCoordinator) onFrame(samples []float32) {
	if c.session != nil {
		c.session.EnqueueAudio(util.EncodeAudio(samples))
	}
}

func (c *SessionCoordinator) OnSessionClosed(id string, err error) {
	if !c.isCurrent(id) {
		return
	}
	c.session = nil
	c.stopRecording()
	if c.talking {
		c.publish(ConnectionLost)
		return
	}
	c.publishIdle()
}

func (c *SessionCoordinator) stopRecording() {
	if c.recording {
		c.recorder.Stop()
		c.recording = false
	}
}

func (c *SessionCoordinator) onLocalFix(fix Fix) {
	c.localFix = &fix
	if c.session != nil && c.session.State() == SessionReady {
		c.session.SetLocation(fix)
	}
}

// OnLocationReceived publishes the distance to the remote fix, first against
// the last known local fix and again once a fresh one resolved.
func (c *SessionCoordinator) OnLocationReceived(remote Fix) {
	if c.localFix != nil {
		c.publishDistance(*c.localFix, remote)
	}
	c.locator.RequestLocation(func(fix Fix) {
		c.loop.Post(func() {
			c.onLocalFix(fix)
			c.publishDistance(fix, remote)
		})
	})
}

func (c *SessionCoordinator) publishDistance(local, remote Fix) {
	d := util.Distance(local, remote)
	if logger.IsDebug() {
		logger.Debug("distance", "local", local, "remote", remote, "meters", d)
	}
	if c.status != nil {
		c.status.OnDistanceChanged(d)
	}
}
