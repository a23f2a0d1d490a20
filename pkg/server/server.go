package server

import (
	. "github.com/Krajiyah/ble-walkie/pkg/ble"
	. "github.com/Krajiyah/ble-walkie/pkg/models"
	"github.com/Krajiyah/ble-walkie/pkg/util"
	"github.com/go-ble/ble"
)

var logger = util.NewLogger("server")

// AudioSink plays decoded inbound audio
type AudioSink interface {
	Play([]float32)
}

// Responder is the listening side: it advertises the walkie service and
// decodes the audio and location records written to it.
type Responder struct {
	name       string
	peripheral Peripheral
	loop       Dispatcher
	sink       AudioSink
	listener   ResponderListener
	service    *ble.Service
	registered bool
	status     ResponderStatus
}

// NewResponder builds the walkie service. Nothing is registered or
// advertised before the radio reports PoweredOn.
func NewResponder(name string, peripheral Peripheral, loop Dispatcher, sink AudioSink, listener ResponderListener) *Responder {
	r := &Responder{name: name, peripheral: peripheral, loop: loop, sink: sink, listener: listener, status: Stopped}
	r.service = getService(r)
	return r
}

// SetListener registers the receiver of inbound fixes, nil detaches it
func (r *Responder) SetListener(l ResponderListener) { r.listener = l }

func (r *Responder) Status() ResponderStatus { return r.status }

func (r *Responder) setStatus(status ResponderStatus) {
	if r.status != status {
		logger.Info("responder status changed", "from", r.status, "to", status)
	}
	r.status = status
}

func getService(r *Responder) *ble.Service {
	service := ble.NewService(util.Descriptor.Service)
	writeChars := []*BLEWriteCharacteristic{
		{util.Descriptor.AudioChar, func(_ string, data []byte) { r.OnWrite(util.Descriptor.AudioChar, data) }},
		{util.Descriptor.LocationChar, func(_ string, data []byte) { r.OnWrite(util.Descriptor.LocationChar, data) }},
	}
	for _, char := range writeChars {
		service.AddCharacteristic(newWriteChar(r.loop, char))
	}
	return service
}

func (r *Responder) OnRadioStateChanged(state RadioState) {
	if state != RadioPoweredOn {
		if r.status == Advertising {
			r.peripheral.StopAdvertising()
			r.setStatus(Stopped)
		}
		return
	}
	if r.status == Crashed {
		return
	}
	if !r.registered {
		if err := r.peripheral.AddService(r.service); err != nil {
			logger.Error("could not register walkie service", "err", err)
			r.setStatus(Crashed)
			return
		}
		r.registered = true
	}
	r.peripheral.Advertise(r.name, util.Descriptor.Service)
	r.setStatus(Advertising)
}

// OnWrite handles one inbound record
func (r *Responder) OnWrite(char ble.UUID, data []byte) {
	switch {
	case char.Equal(util.Descriptor.AudioChar):
		if r.sink != nil {
			r.sink.Play(util.DecodeAudio(data))
		}
	case char.Equal(util.Descriptor.LocationChar):
		fix, err := util.DecodeLocation(data)
		if err != nil {
			logger.Debug("dropping location record", "err", err)
			return
		}
		if r.listener != nil {
			r.listener.OnLocationReceived(fix)
		}
	default:
		logger.Debug("write to unknown characteristic", "char", char)
	}
}
