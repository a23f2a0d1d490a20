package ble

import (
	"context"

	. "github.com/Krajiyah/ble-walkie/pkg/models"
	"github.com/go-ble/ble"
)

// RadioListener is notified when the local radio changes power/authorization state
type RadioListener interface {
	OnRadioStateChanged(RadioState)
}

// CentralHandler receives discovery and connection events of the initiator role
type CentralHandler interface {
	RadioListener
	OnPeerDiscovered(PeerHandle)
	OnConnected(PeerHandle)
	OnDisconnected(PeerHandle, error)
	OnFailedToConnect(PeerHandle, error)
}

// PeripheralHandler receives the per peer results of discovery and writes
type PeripheralHandler interface {
	OnServicesDiscovered([]ble.UUID, error)
	OnCharacteristicsDiscovered([]ble.UUID, error)
	OnReadyToSend()
}

// Central is the initiator side of the ble transport. Every call returns
// immediately, results are delivered later to the registered handlers on
// the event loop.
type Central interface {
	SetHandler(CentralHandler)
	Scan(service ble.UUID)
	StopScan()
	Connect(PeerHandle)
	CancelConnection(PeerHandle)
	SetPeripheralHandler(PeerHandle, PeripheralHandler)
	DiscoverServices(peer PeerHandle, ids []ble.UUID)
	DiscoverCharacteristics(peer PeerHandle, service ble.UUID, ids []ble.UUID)
	WriteWithoutResponse(peer PeerHandle, char ble.UUID, data []byte)
	Release()
}

// Peripheral is the responder side of the ble transport
type Peripheral interface {
	AddService(*ble.Service) error
	Advertise(name string, uuids ...ble.UUID)
	StopAdvertising()
}

// RadioSource reports radio state changes until ctx is done
type RadioSource interface {
	Watch(ctx context.Context, onState func(RadioState))
}

// Dispatcher runs callbacks one at a time on a single logical context
type Dispatcher interface {
	Post(func())
}
