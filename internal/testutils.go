package internal

import (
	"github.com/Krajiyah/ble-walkie/pkg/util"
	"github.com/go-ble/ble"
)

// Addr is a fixed hci address
type Addr string

func (a Addr) String() string { return string(a) }

// ScriptedAdv is an advertisement report with the fields a scan filter looks at
type ScriptedAdv struct {
	Address     Addr
	Name        string
	Uuids       []ble.UUID
	Rssi        int
	Unreachable bool
}

// WalkieAdv is a report from a responder advertising the walkie service
func WalkieAdv(addr string, rssi int) ScriptedAdv {
	return ScriptedAdv{Address: Addr(addr), Name: util.DeviceName, Uuids: []ble.UUID{util.Descriptor.Service}, Rssi: rssi}
}

// ForeignAdv is a report from an unrelated device named name
func ForeignAdv(addr string, rssi int, name string, uuids ...ble.UUID) ScriptedAdv {
	return ScriptedAdv{Address: Addr(addr), Name: name, Uuids: uuids, Rssi: rssi, Unreachable: true}
}

func (a ScriptedAdv) LocalName() string              { return a.Name }
func (a ScriptedAdv) ManufacturerData() []byte       { return nil }
func (a ScriptedAdv) ServiceData() []ble.ServiceData { return nil }
func (a ScriptedAdv) Services() []ble.UUID           { return a.Uuids }
func (a ScriptedAdv) OverflowService() []ble.UUID    { return nil }
func (a ScriptedAdv) TxPowerLevel() int              { return 0 }
func (a ScriptedAdv) Connectable() bool              { return !a.Unreachable }
func (a ScriptedAdv) SolicitedService() []ble.UUID   { return nil }
func (a ScriptedAdv) RSSI() int                      { return a.Rssi }
func (a ScriptedAdv) Addr() ble.Addr                 { return a.Address }

// GetTestServices returns the walkie service exposing charUUIDs
func GetTestServices(charUUIDs []string) []*ble.Service {
	chars := []*ble.Characteristic{}
	for _, uuid := range charUUIDs {
		chars = append(chars, &ble.Characteristic{UUID: ble.MustParse(uuid)})
	}
	return []*ble.Service{{UUID: util.Descriptor.Service, Characteristics: chars}}
}
