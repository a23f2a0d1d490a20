package coordinator

import (
	"errors"
	"testing"

	"github.com/Krajiyah/ble-walkie/internal/fake"
	. "github.com/Krajiyah/ble-walkie/pkg/models"
	"github.com/Krajiyah/ble-walkie/pkg/util"
	"github.com/go-ble/ble"
	pkgerrors "github.com/pkg/errors"
	"gotest.tools/assert"
)

const testPeer = PeerHandle("11:22:33:44:55:66")

type testRecorder struct {
	onFrame func([]float32)
	starts  int
	stops   int
}

func (r *testRecorder) Start(onFrame func([]float32)) error {
	r.onFrame = onFrame
	r.starts++
	return nil
}

func (r *testRecorder) Stop() {
	r.onFrame = nil
	r.stops++
}

type testPermissions struct {
	status   Permission
	answer   Permission
	requests int
}

func (p *testPermissions) Status() Permission { return p.status }

func (p *testPermissions) Request(onResult func(Permission)) {
	p.requests++
	p.status = p.answer
	onResult(p.answer)
}

// testLocator keeps requests pending until resolve
type testLocator struct {
	pending []func(Fix)
}

func (l *testLocator) RequestLocation(onFix func(Fix)) { l.pending = append(l.pending, onFix) }

func (l *testLocator) resolve(fix Fix) {
	pending := l.pending
	l.pending = nil
	for _, fn := range pending {
		fn(fix)
	}
}

type testStatus struct {
	statuses  []Status
	distances []float64
}

func (s *testStatus) OnStatusChanged(status Status) { s.statuses = append(s.statuses, status) }
func (s *testStatus) OnDistanceChanged(d float64)   { s.distances = append(s.distances, d) }

func (s *testStatus) last() Status { return s.statuses[len(s.statuses)-1] }

type testSink struct {
	frames int
}

func (s *testSink) Play([]float32) { s.frames++ }

type harness struct {
	c           *SessionCoordinator
	central     *fake.FakeCentral
	peripheral  *fake.FakePeripheral
	recorder    *testRecorder
	permissions *testPermissions
	locator     *testLocator
	status      *testStatus
	sink        *testSink
}

func newHarness() *harness {
	h := &harness{
		central:     fake.NewFakeCentral(),
		peripheral:  &fake.FakePeripheral{},
		recorder:    &testRecorder{},
		permissions: &testPermissions{status: PermissionGranted},
		locator:     &testLocator{},
		status:      &testStatus{},
		sink:        &testSink{},
	}
	h.c = New(Options{
		Name:        util.DeviceName,
		Central:     h.central,
		Peripheral:  h.peripheral,
		Loop:        fake.Immediate{},
		Sink:        h.sink,
		Recorder:    h.recorder,
		Permissions: h.permissions,
		Locator:     h.locator,
		Status:      h.status,
	})
	return h
}

func (h *harness) discover() {
	h.central.Handler.OnRadioStateChanged(RadioPoweredOn)
	h.central.Handler.OnPeerDiscovered(testPeer)
}

func (h *harness) handshake() {
	h.central.Handler.OnConnected(testPeer)
	p := h.central.Peripherals[testPeer]
	p.OnServicesDiscovered([]ble.UUID{util.Descriptor.Service}, nil)
	p.OnCharacteristicsDiscovered(util.Descriptor.CharacteristicIDs(), nil)
}

func TestDiscoveryStatuses(t *testing.T) {
	h := newHarness()
	assert.Equal(t, h.c.Status(), Initializing)
	h.central.Handler.OnRadioStateChanged(RadioPoweredOff)
	h.discover()
	assert.DeepEqual(t, h.status.statuses, []Status{AwaitingRadioOn, Searching, PeerFound})
}

func TestUnsupportedStatus(t *testing.T) {
	h := newHarness()
	h.central.Handler.OnRadioStateChanged(RadioUnsupported)
	assert.DeepEqual(t, h.status.statuses, []Status{Unsupported})
	assert.Assert(t, h.central.Released)
}

func TestTalkWithoutPeer(t *testing.T) {
	h := newHarness()
	err := h.c.TalkPressed()
	assert.Equal(t, pkgerrors.Cause(err), ErrNoPeer)
	assert.Equal(t, h.central.Count("Connect"), 0)
}

func TestTalkFlow(t *testing.T) {
	h := newHarness()
	h.discover()
	assert.NilError(t, h.c.TalkPressed())
	assert.Equal(t, h.status.last(), Connecting)
	assert.Equal(t, h.central.Count("Connect"), 1)
	assert.Equal(t, len(h.locator.pending), 1)

	h.handshake()
	assert.Equal(t, h.status.last(), Talking)
	assert.Equal(t, h.recorder.starts, 1)

	h.recorder.onFrame([]float32{1, 0, 0, 0, -1, 0, 0, 0})
	assert.DeepEqual(t, h.central.Writes(util.Descriptor.AudioChar), [][]byte{{255, 0}})

	fix := Fix{Latitude: 10, Longitude: 20, Altitude: 30}
	h.locator.resolve(fix)
	h.central.Peripherals[testPeer].OnReadyToSend()
	assert.DeepEqual(t, h.central.Writes(util.Descriptor.LocationChar), [][]byte{util.EncodeLocation(fix)})

	h.c.TalkReleased()
	assert.Equal(t, h.recorder.stops, 1)
	assert.Equal(t, h.central.Count("CancelConnection"), 1)
	assert.Equal(t, h.status.last(), PeerFound)
}

func TestKnownFixSentWhenReady(t *testing.T) {
	h := newHarness()
	h.discover()
	fix := Fix{Latitude: 1, Longitude: 2, Altitude: 3}
	h.c.onLocalFix(fix)
	assert.NilError(t, h.c.TalkPressed())
	h.handshake()
	h.recorder.onFrame(make([]float32, 4))
	h.central.Peripherals[testPeer].OnReadyToSend()
	assert.DeepEqual(t, h.central.Writes(util.Descriptor.LocationChar), [][]byte{util.EncodeLocation(fix)})
}

func TestConnectionLost(t *testing.T) {
	h := newHarness()
	h.discover()
	assert.NilError(t, h.c.TalkPressed())
	h.handshake()
	h.central.Handler.OnDisconnected(testPeer, errors.New("supervision timeout"))
	assert.Equal(t, h.status.last(), ConnectionLost)
	assert.Equal(t, h.recorder.stops, 1)

	h.c.TalkReleased()
	assert.Equal(t, h.status.last(), PeerFound)
	assert.Equal(t, h.central.Count("CancelConnection"), 0)
}

func TestHandshakeFailureWhileHeld(t *testing.T) {
	h := newHarness()
	h.discover()
	assert.NilError(t, h.c.TalkPressed())
	h.central.Handler.OnFailedToConnect(testPeer, errors.New("page timeout"))
	assert.Equal(t, h.status.last(), ConnectionLost)
	assert.Equal(t, h.recorder.starts, 0)

	assert.NilError(t, h.c.TalkPressed())
	assert.Equal(t, h.central.Count("Connect"), 2)
}

func TestStaleSessionEventsIgnored(t *testing.T) {
	h := newHarness()
	h.discover()
	assert.NilError(t, h.c.TalkPressed())
	h.c.OnSessionReady("stale")
	h.c.OnSessionClosed("stale", nil)
	assert.Equal(t, h.status.last(), Connecting)
	assert.Equal(t, h.recorder.starts, 0)
}

func TestPermissionUndetermined(t *testing.T) {
	h := newHarness()
	h.discover()
	h.permissions.status = PermissionUndetermined
	h.permissions.answer = PermissionDenied
	assert.Equal(t, h.c.TalkPressed(), ErrPermissionRequired)
	assert.Equal(t, h.permissions.requests, 1)
	assert.Equal(t, h.status.last(), PermissionRequired)
	assert.Equal(t, h.central.Count("Connect"), 0)
}

func TestPermissionGrantedLater(t *testing.T) {
	h := newHarness()
	h.discover()
	h.permissions.status = PermissionUndetermined
	h.permissions.answer = PermissionGranted
	assert.Equal(t, h.c.TalkPressed(), ErrPermissionRequired)
	assert.Equal(t, h.status.last(), PeerFound)
	assert.NilError(t, h.c.TalkPressed())
	assert.Equal(t, h.status.last(), Connecting)
}

func TestPermissionDenied(t *testing.T) {
	h := newHarness()
	h.discover()
	h.permissions.status = PermissionDenied
	assert.Equal(t, h.c.TalkPressed(), ErrPermissionRequired)
	assert.Equal(t, h.permissions.requests, 0)
	assert.Equal(t, h.status.last(), PermissionRequired)
}

func TestDistancePublishing(t *testing.T) {
	h := newHarness()
	remote := Fix{Altitude: 10}
	h.c.OnLocationReceived(remote)
	assert.Equal(t, len(h.status.distances), 0)
	h.locator.resolve(Fix{})
	assert.DeepEqual(t, h.status.distances, []float64{10})

	h.c.OnLocationReceived(Fix{Altitude: 4})
	assert.DeepEqual(t, h.status.distances, []float64{10, 4})
	h.locator.resolve(Fix{Altitude: 1})
	assert.DeepEqual(t, h.status.distances, []float64{10, 4, 3})
}

func TestResponderWiring(t *testing.T) {
	h := newHarness()
	h.c.Responder().OnRadioStateChanged(RadioPoweredOn)
	assert.Assert(t, h.peripheral.Advertising)
	h.c.Responder().OnWrite(util.Descriptor.AudioChar, []byte{1, 2})
	assert.Equal(t, h.sink.frames, 1)
	h.c.Responder().OnWrite(util.Descriptor.LocationChar, util.EncodeLocation(Fix{Altitude: 7}))
	h.locator.resolve(Fix{})
	assert.DeepEqual(t, h.status.distances, []float64{7})
}
