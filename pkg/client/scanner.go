package client

import (
	. "github.com/Krajiyah/ble-walkie/pkg/ble"
	. "github.com/Krajiyah/ble-walkie/pkg/models"
	"github.com/Krajiyah/ble-walkie/pkg/util"
	"github.com/bradfitz/slice"
	mapset "github.com/deckarep/golang-set"
	"github.com/pkg/errors"
)

// ErrNotIdle is returned by AcquireSession while no peer is known
var ErrNotIdle = errors.New("scanner is not idle")

// ErrRadioUnsupported closes every cached session once the radio is declared unsupported
var ErrRadioUnsupported = errors.New("radio unsupported")

// LinkScanner drives discovery on the initiator side and caches one
// StreamSession per discovered peer.
type LinkScanner struct {
	central    Central
	listener   ScannerListener
	state      LinkState
	peer       PeerHandle
	discovered mapset.Set
	sessions   map[PeerHandle]*StreamSession
}

// NewLinkScanner registers the scanner as the central handler of central
func NewLinkScanner(central Central, listener ScannerListener) *LinkScanner {
	s := &LinkScanner{
		central:    central,
		listener:   listener,
		state:      LinkInitial,
		discovered: mapset.NewSet(),
		sessions:   map[PeerHandle]*StreamSession{},
	}
	central.SetHandler(s)
	return s
}

func (s *LinkScanner) State() LinkState { return s.state }

// Peer is the most recently discovered peer, empty before the first discovery
func (s *LinkScanner) Peer() PeerHandle { return s.peer }

// Discovered lists the peers seen since scanning last started
func (s *LinkScanner) Discovered() []PeerHandle {
	ret := []PeerHandle{}
	for p := range s.discovered.Iter() {
		ret = append(ret, p.(PeerHandle))
	}
	slice.Sort(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}

func (s *LinkScanner) setState(state LinkState) {
	logger.Info("link state changed", "from", s.state, "to", state)
	s.state = state
}

func (s *LinkScanner) OnRadioStateChanged(state RadioState) {
	if s.state == LinkUnsupported {
		return
	}
	switch state {
	case RadioResetting, RadioUnauthorized, RadioPoweredOff:
		s.central.StopScan()
		s.setState(LinkAwaitingRadioOn)
		if s.listener != nil {
			s.listener.OnAwaitingRadioOn()
		}
	case RadioPoweredOn:
		s.discovered = mapset.NewSet()
		s.setState(LinkScanning)
		s.central.Scan(util.Descriptor.Service)
		if s.listener != nil {
			s.listener.OnScanStarted()
		}
	default:
		s.setState(LinkUnsupported)
		s.central.Release()
		for peer, session := range s.sessions {
			session.closed(ErrRadioUnsupported)
			delete(s.sessions, peer)
		}
		if s.listener != nil {
			s.listener.OnUnsupported()
		}
	}
}

func (s *LinkScanner) OnPeerDiscovered(peer PeerHandle) {
	if s.state != LinkScanning {
		return
	}
	s.discovered.Add(peer)
	s.peer = peer
	s.setState(LinkIdle)
	s.central.StopScan()
	logger.Info("peer found", "peer", peer)
	if s.listener != nil {
		s.listener.OnPeerFound(peer)
	}
}

// AcquireSession returns the cached session of the idle peer while it is
// still valid, otherwise it opens a new one.
func (s *LinkScanner) AcquireSession() (*StreamSession, error) {
	if s.state != LinkIdle {
		return nil, errors.Wrapf(ErrNotIdle, "state %s", s.state)
	}
	if session, ok := s.sessions[s.peer]; ok && session.IsValid() {
		return session, nil
	}
	session := newStreamSession(s.peer, s.central)
	s.sessions[s.peer] = session
	return session, nil
}

func (s *LinkScanner) OnConnected(peer PeerHandle) {
	if session, ok := s.sessions[peer]; ok {
		session.OnConnected()
	}
}

func (s *LinkScanner) OnDisconnected(peer PeerHandle, err error) {
	if session, ok := s.sessions[peer]; ok {
		delete(s.sessions, peer)
		session.OnDisconnected(err)
	}
}

func (s *LinkScanner) OnFailedToConnect(peer PeerHandle, err error) {
	if session, ok := s.sessions[peer]; ok {
		delete(s.sessions, peer)
		session.OnFailedToConnect(err)
	}
}
