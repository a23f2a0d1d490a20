package client

import (
	"errors"
	"testing"

	"github.com/Krajiyah/ble-walkie/internal/fake"
	. "github.com/Krajiyah/ble-walkie/pkg/models"
	"github.com/Krajiyah/ble-walkie/pkg/util"
	pkgerrors "github.com/pkg/errors"
	"gotest.tools/assert"
)

const (
	testPeer  = PeerHandle("11:22:33:44:55:66")
	otherPeer = PeerHandle("AA:BB:CC:DD:EE:FF")
)

type testScannerListener struct {
	events []string
}

func (l *testScannerListener) OnUnsupported()     { l.events = append(l.events, "unsupported") }
func (l *testScannerListener) OnAwaitingRadioOn() { l.events = append(l.events, "awaiting") }
func (l *testScannerListener) OnScanStarted()     { l.events = append(l.events, "scanning") }
func (l *testScannerListener) OnPeerFound(p PeerHandle) {
	l.events = append(l.events, "found "+p.String())
}

func newTestScanner() (*LinkScanner, *fake.FakeCentral, *testScannerListener) {
	central := fake.NewFakeCentral()
	listener := &testScannerListener{}
	return NewLinkScanner(central, listener), central, listener
}

func TestScannerRegistersAsHandler(t *testing.T) {
	s, central, _ := newTestScanner()
	assert.Equal(t, central.Handler, s)
	assert.Equal(t, s.State(), LinkInitial)
}

func TestScannerRadioStates(t *testing.T) {
	for _, state := range []RadioState{RadioResetting, RadioUnauthorized, RadioPoweredOff} {
		s, _, listener := newTestScanner()
		s.OnRadioStateChanged(state)
		assert.Equal(t, s.State(), LinkAwaitingRadioOn)
		assert.DeepEqual(t, listener.events, []string{"awaiting"})
	}
	for _, state := range []RadioState{RadioUnknown, RadioUnsupported} {
		s, central, listener := newTestScanner()
		s.OnRadioStateChanged(state)
		assert.Equal(t, s.State(), LinkUnsupported)
		assert.Assert(t, central.Released)
		assert.DeepEqual(t, listener.events, []string{"unsupported"})
	}
}

func TestScannerUnsupportedIsTerminal(t *testing.T) {
	s, central, listener := newTestScanner()
	s.OnRadioStateChanged(RadioUnsupported)
	s.OnRadioStateChanged(RadioPoweredOn)
	s.OnPeerDiscovered(testPeer)
	assert.Equal(t, s.State(), LinkUnsupported)
	assert.Equal(t, central.Count("Scan"), 0)
	assert.DeepEqual(t, listener.events, []string{"unsupported"})
}

func TestScannerScansForService(t *testing.T) {
	s, central, listener := newTestScanner()
	s.OnRadioStateChanged(RadioPoweredOff)
	s.OnRadioStateChanged(RadioPoweredOn)
	assert.Equal(t, s.State(), LinkScanning)
	assert.Equal(t, central.Count("Scan"), 1)
	assert.Assert(t, central.Calls[len(central.Calls)-1].UUIDs[0].Equal(util.Descriptor.Service))
	assert.DeepEqual(t, listener.events, []string{"awaiting", "scanning"})
}

func TestScannerFirstPeerWins(t *testing.T) {
	s, central, listener := newTestScanner()
	s.OnPeerDiscovered(otherPeer)
	assert.Equal(t, s.State(), LinkInitial)

	s.OnRadioStateChanged(RadioPoweredOn)
	s.OnPeerDiscovered(testPeer)
	s.OnPeerDiscovered(otherPeer)
	assert.Equal(t, s.State(), LinkIdle)
	assert.Equal(t, s.Peer(), testPeer)
	assert.DeepEqual(t, s.Discovered(), []PeerHandle{testPeer})
	assert.DeepEqual(t, central.Methods(), []string{"Scan", "StopScan"})
	assert.DeepEqual(t, listener.events, []string{"scanning", "found " + testPeer.String()})
}

func TestScannerRescanResetsDiscovered(t *testing.T) {
	s, _, _ := newTestScanner()
	s.OnRadioStateChanged(RadioPoweredOn)
	s.OnPeerDiscovered(otherPeer)
	s.OnRadioStateChanged(RadioPoweredOn)
	assert.Equal(t, len(s.Discovered()), 0)
	s.OnPeerDiscovered(testPeer)
	assert.DeepEqual(t, s.Discovered(), []PeerHandle{testPeer})
}

func TestAcquireSessionRequiresIdle(t *testing.T) {
	s, _, _ := newTestScanner()
	_, err := s.AcquireSession()
	assert.Equal(t, pkgerrors.Cause(err), ErrNotIdle)
	s.OnRadioStateChanged(RadioPoweredOn)
	_, err = s.AcquireSession()
	assert.Equal(t, pkgerrors.Cause(err), ErrNotIdle)
}

func TestAcquireSessionIsCached(t *testing.T) {
	s, central, _ := newTestScanner()
	s.OnRadioStateChanged(RadioPoweredOn)
	s.OnPeerDiscovered(testPeer)

	first, err := s.AcquireSession()
	assert.NilError(t, err)
	assert.Equal(t, first.State(), SessionConnecting)
	assert.Equal(t, first.Peer(), testPeer)
	assert.Equal(t, central.Peripherals[testPeer], first)
	second, err := s.AcquireSession()
	assert.NilError(t, err)
	assert.Equal(t, second, first)
	assert.Equal(t, central.Count("Connect"), 1)

	first.Close()
	third, err := s.AcquireSession()
	assert.NilError(t, err)
	assert.Assert(t, third != first)
	assert.Assert(t, third.ID() != first.ID())
	assert.Equal(t, central.Count("Connect"), 2)
}

func TestScannerRoutesConnectionEvents(t *testing.T) {
	s, central, _ := newTestScanner()
	s.OnRadioStateChanged(RadioPoweredOn)
	s.OnPeerDiscovered(testPeer)
	session, _ := s.AcquireSession()
	listener := &testSessionListener{}
	session.SetListener(listener)

	s.OnConnected(otherPeer)
	assert.Equal(t, session.State(), SessionConnecting)
	s.OnConnected(testPeer)
	assert.Equal(t, session.State(), SessionAwaitingServices)
	assert.Equal(t, central.Count("DiscoverServices"), 1)

	s.OnDisconnected(testPeer, errors.New("link loss"))
	assert.Equal(t, session.State(), SessionClosed)
	assert.DeepEqual(t, listener.events, []string{"closed " + session.ID()})
	assert.Equal(t, len(s.Snapshot().Sessions), 0)
}

func TestScannerFailedToConnect(t *testing.T) {
	s, _, _ := newTestScanner()
	s.OnRadioStateChanged(RadioPoweredOn)
	s.OnPeerDiscovered(testPeer)
	session, _ := s.AcquireSession()
	listener := &testSessionListener{}
	session.SetListener(listener)
	s.OnFailedToConnect(testPeer, errors.New("page timeout"))
	assert.Equal(t, session.State(), SessionClosed)
	assert.Equal(t, len(listener.events), 1)
	assert.ErrorContains(t, listener.errs[0], "page timeout")
}

func TestUnsupportedClosesSessions(t *testing.T) {
	s, _, _ := newTestScanner()
	s.OnRadioStateChanged(RadioPoweredOn)
	s.OnPeerDiscovered(testPeer)
	session, _ := s.AcquireSession()
	listener := &testSessionListener{}
	session.SetListener(listener)
	s.OnRadioStateChanged(RadioUnsupported)
	assert.Equal(t, session.State(), SessionClosed)
	assert.Equal(t, listener.errs[0], ErrRadioUnsupported)
}

func TestSnapshot(t *testing.T) {
	s, _, _ := newTestScanner()
	s.OnRadioStateChanged(RadioPoweredOn)
	s.OnPeerDiscovered(testPeer)
	s.AcquireSession()
	snap := s.Snapshot()
	assert.Equal(t, snap.Link, LinkIdle)
	assert.Equal(t, snap.Peer, testPeer)
	assert.DeepEqual(t, snap.Sessions, map[PeerHandle]SessionState{testPeer: SessionConnecting})
}
