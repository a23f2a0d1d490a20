package models

// ScannerListener is notified about discovery progress of the initiator
type ScannerListener interface {
	OnUnsupported()
	OnAwaitingRadioOn()
	OnScanStarted()
	OnPeerFound(PeerHandle)
}

// SessionListener is notified about the lifecycle of a stream session (identified by session id)
type SessionListener interface {
	OnSessionReady(string)
	OnSessionClosed(string, error)
}

// ResponderListener is notified about decoded inbound location records
type ResponderListener interface {
	OnLocationReceived(Fix)
}

// StatusListener is the presentation boundary of the walkie-talkie
type StatusListener interface {
	OnStatusChanged(Status)
	OnDistanceChanged(float64)
}
