package models

// RadioState is an enum for the power/authorization conditions reported by the local radio
type RadioState int

const (
	// RadioUnknown indicates the radio has not reported yet
	RadioUnknown RadioState = iota
	// RadioResetting indicates the radio service is restarting and an update is imminent
	RadioResetting
	// RadioUnsupported indicates the host has no usable ble radio
	RadioUnsupported
	// RadioUnauthorized indicates the process is not allowed to use the radio
	RadioUnauthorized
	// RadioPoweredOff indicates the radio exists but is switched off
	RadioPoweredOff
	// RadioPoweredOn indicates the radio is available
	RadioPoweredOn
)

func (s RadioState) String() string {
	return []string{"Unknown", "Resetting", "Unsupported", "Unauthorized", "PoweredOff", "PoweredOn"}[s]
}

// LinkState is an enum for the discovery side of the initiator
type LinkState int

const (
	// LinkInitial is the state before the radio reported anything
	LinkInitial LinkState = iota
	// LinkAwaitingRadioOn indicates the radio is off, resetting or unauthorized
	LinkAwaitingRadioOn
	// LinkUnsupported is terminal, the radio can never be used
	LinkUnsupported
	// LinkScanning indicates a scan for the service is running
	LinkScanning
	// LinkIdle indicates a peer was found and scanning stopped
	LinkIdle
)

func (s LinkState) String() string {
	return []string{"Initial", "AwaitingRadioOn", "Unsupported", "Scanning", "Idle"}[s]
}

// SessionState is an enum for the lifecycle of one peer connection
type SessionState int

const (
	// SessionConnecting indicates a connect request is outstanding
	SessionConnecting SessionState = iota
	// SessionAwaitingServices indicates service discovery is outstanding
	SessionAwaitingServices
	// SessionAwaitingCharacteristics indicates characteristic discovery is outstanding
	SessionAwaitingCharacteristics
	// SessionReady indicates both characteristics are bound and writes are allowed
	SessionReady
	// SessionClosed is terminal
	SessionClosed
)

func (s SessionState) String() string {
	return []string{"Connecting", "AwaitingServices", "AwaitingCharacteristics", "Ready", "Closed"}[s]
}

// Status is what the walkie-talkie reports to its presentation layer
type Status int

const (
	Initializing Status = iota
	Unsupported
	AwaitingRadioOn
	Searching
	PeerFound
	Connecting
	Talking
	ConnectionLost
	PermissionRequired
)

func (s Status) String() string {
	return []string{
		"Initializing", "Unsupported", "AwaitingRadioOn", "Searching", "PeerFound",
		"Connecting", "Talking", "ConnectionLost", "PermissionRequired",
	}[s]
}

// Permission is the user's answer to a capture permission prompt
type Permission int

const (
	PermissionUndetermined Permission = iota
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	return []string{"Undetermined", "Granted", "Denied"}[p]
}
