package client

import (
	. "github.com/Krajiyah/ble-walkie/pkg/models"
)

// ScannerState is a diagnostic snapshot of the initiator side
type ScannerState struct {
	Link       LinkState
	Peer       PeerHandle
	Discovered []PeerHandle
	Sessions   map[PeerHandle]SessionState
}

// Snapshot describes the scanner and every cached session
func (s *LinkScanner) Snapshot() ScannerState {
	sessions := map[PeerHandle]SessionState{}
	for peer, session := range s.sessions {
		sessions[peer] = session.State()
	}
	return ScannerState{Link: s.state, Peer: s.peer, Discovered: s.Discovered(), Sessions: sessions}
}
