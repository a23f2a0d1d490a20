package fake

import (
	. "github.com/Krajiyah/ble-walkie/pkg/ble"
	. "github.com/Krajiyah/ble-walkie/pkg/models"
	"github.com/go-ble/ble"
)

// Call is one request recorded by FakeCentral
type Call struct {
	Method string
	Peer   PeerHandle
	UUIDs  []ble.UUID
	Data   []byte
}

// FakeCentral records every request, tests deliver the results by calling the handlers
type FakeCentral struct {
	Handler     CentralHandler
	Peripherals map[PeerHandle]PeripheralHandler
	Calls       []Call
	Released    bool
}

func NewFakeCentral() *FakeCentral {
	return &FakeCentral{Peripherals: map[PeerHandle]PeripheralHandler{}}
}

func (f *FakeCentral) record(c Call) { f.Calls = append(f.Calls, c) }

func (f *FakeCentral) SetHandler(h CentralHandler) { f.Handler = h }

func (f *FakeCentral) Scan(service ble.UUID) {
	f.record(Call{Method: "Scan", UUIDs: []ble.UUID{service}})
}

func (f *FakeCentral) StopScan() { f.record(Call{Method: "StopScan"}) }

func (f *FakeCentral) Connect(peer PeerHandle) { f.record(Call{Method: "Connect", Peer: peer}) }

func (f *FakeCentral) CancelConnection(peer PeerHandle) {
	f.record(Call{Method: "CancelConnection", Peer: peer})
}

func (f *FakeCentral) SetPeripheralHandler(peer PeerHandle, h PeripheralHandler) {
	f.Peripherals[peer] = h
}

func (f *FakeCentral) DiscoverServices(peer PeerHandle, ids []ble.UUID) {
	f.record(Call{Method: "DiscoverServices", Peer: peer, UUIDs: ids})
}

func (f *FakeCentral) DiscoverCharacteristics(peer PeerHandle, service ble.UUID, ids []ble.UUID) {
	f.record(Call{Method: "DiscoverCharacteristics", Peer: peer, UUIDs: append([]ble.UUID{service}, ids...)})
}

func (f *FakeCentral) WriteWithoutResponse(peer PeerHandle, char ble.UUID, data []byte) {
	f.record(Call{Method: "WriteWithoutResponse", Peer: peer, UUIDs: []ble.UUID{char}, Data: append([]byte{}, data...)})
}

func (f *FakeCentral) Release() { f.Released = true }

// Methods lists the recorded method names in order
func (f *FakeCentral) Methods() []string {
	ret := []string{}
	for _, c := range f.Calls {
		ret = append(ret, c.Method)
	}
	return ret
}

// Writes returns the recorded writes to char
func (f *FakeCentral) Writes(char ble.UUID) [][]byte {
	ret := [][]byte{}
	for _, c := range f.Calls {
		if c.Method == "WriteWithoutResponse" && c.UUIDs[0].Equal(char) {
			ret = append(ret, c.Data)
		}
	}
	return ret
}

// Count returns how often method was called
func (f *FakeCentral) Count(method string) int {
	n := 0
	for _, c := range f.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// FakePeripheral records the responder side requests
type FakePeripheral struct {
	Services    []*ble.Service
	Advertising bool
	Adverts     int
	AddErr      error
}

func (p *FakePeripheral) AddService(s *ble.Service) error {
	if p.AddErr != nil {
		return p.AddErr
	}
	p.Services = append(p.Services, s)
	return nil
}

func (p *FakePeripheral) Advertise(name string, uuids ...ble.UUID) {
	p.Advertising = true
	p.Adverts++
}

func (p *FakePeripheral) StopAdvertising() { p.Advertising = false }

// Immediate is a Dispatcher running callbacks synchronously
type Immediate struct{}

func (Immediate) Post(fn func()) { fn() }
