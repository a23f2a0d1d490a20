package ble

import (
	"context"
	"sync"
	"time"

	. "github.com/Krajiyah/ble-walkie/pkg/models"
	"github.com/Krajiyah/ble-walkie/pkg/util"
	"github.com/go-ble/ble"
	"github.com/pkg/errors"
)

var logger = util.NewLogger("ble")

// ErrNoSuchPeer is reported when a peer was never seen in a scan or is no longer connected
var ErrNoSuchPeer = errors.New("no such peer")

// link is the transport side state of one peer
type link struct {
	gen        int
	cln        coreClient
	dialCancel context.CancelFunc
	handler    PeripheralHandler
	services   map[string]*ble.Service
	chars      map[string]*ble.Characteristic
}

// Device is a go-ble backed Central and Peripheral sharing one hci device.
// Its methods must be called from the event loop, blocking go-ble calls run
// on worker goroutines which post their results back onto the loop.
type Device struct {
	timeout        time.Duration
	methods        coreMethods
	loop           Dispatcher
	radio          RadioSource
	mutex          sync.Mutex
	handler        CentralHandler
	radioListeners []RadioListener
	radioState     RadioState
	addrs          map[PeerHandle]ble.Addr
	links          map[PeerHandle]*link
	scanCancel     context.CancelFunc
	advCancel      context.CancelFunc
	released       bool
}

// NewDevice creates a device driving the default linux hci adapter. radio may be nil,
// the device then reports PoweredOn as soon as the hci device opens.
func NewDevice(timeout time.Duration, loop Dispatcher, radio RadioSource) *Device {
	return newDevice(timeout, loop, radio, &realCoreMethods{})
}

func newDevice(timeout time.Duration, loop Dispatcher, radio RadioSource, methods coreMethods) *Device {
	return &Device{
		timeout: timeout, methods: methods, loop: loop, radio: radio,
		addrs: map[PeerHandle]ble.Addr{}, links: map[PeerHandle]*link{},
	}
}

// Start opens the hci device and begins reporting radio state
func (d *Device) Start(ctx context.Context) error {
	err := retry("SetDefaultDevice", func() error { return d.methods.SetDefaultDevice(d.timeout) })
	if err != nil {
		d.setRadioState(RadioUnsupported)
		return err
	}
	if d.radio == nil {
		d.setRadioState(RadioPoweredOn)
		return nil
	}
	go d.radio.Watch(ctx, d.setRadioState)
	return nil
}

// SetHandler registers the initiator role, nil detaches it
func (d *Device) SetHandler(h CentralHandler) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.handler = h
}

// AddRadioListener registers an additional radio state listener (the responder role)
func (d *Device) AddRadioListener(l RadioListener) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.radioListeners = append(d.radioListeners, l)
}

func (d *Device) centralHandler() CentralHandler {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.released {
		return nil
	}
	return d.handler
}

// setRadioState may be called from any goroutine, repeated states are collapsed
func (d *Device) setRadioState(state RadioState) {
	d.loop.Post(func() {
		d.mutex.Lock()
		if d.radioState == state {
			d.mutex.Unlock()
			return
		}
		d.radioState = state
		listeners := append([]RadioListener{}, d.radioListeners...)
		d.mutex.Unlock()
		logger.Info("radio state changed", "state", state)
		if h := d.centralHandler(); h != nil {
			h.OnRadioStateChanged(state)
		}
		for _, l := range listeners {
			l.OnRadioStateChanged(state)
		}
	})
}

// Release permanently gives up the initiator role of the device
func (d *Device) Release() {
	d.StopScan()
	d.mutex.Lock()
	d.released = true
	for peer, l := range d.links {
		if cln := d.dropLink(l); cln != nil {
			go d.cancelClient(peer, cln)
		}
		delete(d.links, peer)
	}
	d.mutex.Unlock()
	logger.Info("central role released")
}

// Close stops advertising and the hci device
func (d *Device) Close() error {
	d.Release()
	d.StopAdvertising()
	return d.methods.Stop()
}

// Scan reports every advertiser of service to the central handler until StopScan
func (d *Device) Scan(service ble.UUID) {
	d.StopScan()
	ctx, cancel := context.WithCancel(context.Background())
	d.scanCancel = cancel
	go func() {
		err := d.methods.Scan(ctx, func(a ble.Advertisement) {
			peer := NewPeerHandle(a.Addr().String())
			d.mutex.Lock()
			d.addrs[peer] = a.Addr()
			d.mutex.Unlock()
			d.loop.Post(func() {
				if h := d.centralHandler(); h != nil {
					h.OnPeerDiscovered(peer)
				}
			})
		}, func(a ble.Advertisement) bool {
			return util.ContainsUUID(a.Services(), service)
		})
		if err != nil && ctx.Err() == nil {
			logger.Warn("scan stopped", "err", err)
		}
	}()
}

// StopScan cancels a running scan
func (d *Device) StopScan() {
	if d.scanCancel != nil {
		d.scanCancel()
		d.scanCancel = nil
	}
}

// AddService registers a gatt service on the local device
func (d *Device) AddService(svc *ble.Service) error {
	return retry("AddService", func() error { return d.methods.AddService(svc) })
}

// Advertise broadcasts name and uuids until StopAdvertising
func (d *Device) Advertise(name string, uuids ...ble.UUID) {
	d.StopAdvertising()
	ctx, cancel := context.WithCancel(context.Background())
	d.advCancel = cancel
	go func() {
		err := d.methods.AdvertiseNameAndServices(ctx, name, uuids...)
		if err != nil && ctx.Err() == nil {
			logger.Warn("advertising stopped", "err", err)
		}
	}()
}

// StopAdvertising cancels advertising
func (d *Device) StopAdvertising() {
	if d.advCancel != nil {
		d.advCancel()
		d.advCancel = nil
	}
}
