package models

import (
	"fmt"
	"strings"
)

// PeerHandle identifies a remote device discovered by the transport
type PeerHandle string

// NewPeerHandle normalizes a transport address into a handle
func NewPeerHandle(addr string) PeerHandle {
	return PeerHandle(strings.ToUpper(addr))
}

func (p PeerHandle) String() string { return string(p) }

// Fix is a single geolocation sample
type Fix struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
}

func (f Fix) String() string {
	return fmt.Sprintf("(%.6f, %.6f, %.1fm)", f.Latitude, f.Longitude, f.Altitude)
}
