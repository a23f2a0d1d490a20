package ble

import (
	"context"
	"fmt"

	. "github.com/Krajiyah/ble-walkie/pkg/models"
	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
)

const (
	bluezBus     = "org.bluez"
	adapterIface = "org.bluez.Adapter1"
	propsIface   = "org.freedesktop.DBus.Properties"
	propsSignal  = "org.freedesktop.DBus.Properties.PropertiesChanged"

	// DefaultAdapter is the BlueZ object path of the first hci adapter
	DefaultAdapter = "/org/bluez/hci0"

	errAccessDenied  = "org.freedesktop.DBus.Error.AccessDenied"
	errUnknownObject = "org.freedesktop.DBus.Error.UnknownObject"
	errNoSuchAdapter = "org.bluez.Error.NoSuchAdapter"
)

// RadioMonitor follows the power state of a BlueZ adapter over the system bus
type RadioMonitor struct {
	conn    *dbus.Conn
	adapter dbus.ObjectPath
}

// NewRadioMonitor connects to the system bus and checks BlueZ is running
func NewRadioMonitor(adapter string) (*RadioMonitor, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, errors.Wrap(err, "connect to system bus")
	}
	var names []string
	if err := conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return nil, errors.Wrap(err, "list bus names")
	}
	for _, n := range names {
		if n == bluezBus {
			return &RadioMonitor{conn: conn, adapter: dbus.ObjectPath(adapter)}, nil
		}
	}
	return nil, errors.New("org.bluez not found on system bus")
}

// Watch reports the current state and then every change until ctx is done
func (m *RadioMonitor) Watch(ctx context.Context, onState func(RadioState)) {
	rule := fmt.Sprintf("type='signal',interface='%s',member='PropertiesChanged',path='%s'", propsIface, m.adapter)
	if call := m.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule); call.Err != nil {
		logger.Warn("AddMatch issue", "err", call.Err)
	}
	ch := make(chan *dbus.Signal, 16)
	m.conn.Signal(ch)
	defer m.conn.RemoveSignal(ch)

	onState(m.current())
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-ch:
			if !ok {
				onState(RadioResetting)
				return
			}
			if state, ok := radioStateFromSignal(sig, m.adapter); ok {
				onState(state)
			}
		}
	}
}

func (m *RadioMonitor) current() RadioState {
	obj := m.conn.Object(bluezBus, m.adapter)
	var props map[string]dbus.Variant
	if err := obj.Call(propsIface+".GetAll", 0, adapterIface).Store(&props); err != nil {
		return radioStateFromError(err)
	}
	if state, ok := radioStateFromProps(props); ok {
		return state
	}
	return RadioResetting
}

func radioStateFromSignal(sig *dbus.Signal, adapter dbus.ObjectPath) (RadioState, bool) {
	if sig.Name != propsSignal || sig.Path != adapter || len(sig.Body) < 2 {
		return RadioUnknown, false
	}
	// Body: [interface_name string, changed_props map[string]Variant, invalidated []string]
	if iface, ok := sig.Body[0].(string); !ok || iface != adapterIface {
		return RadioUnknown, false
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return RadioUnknown, false
	}
	return radioStateFromProps(changed)
}

// radioStateFromProps prefers the PowerState property of newer BlueZ releases over Powered
func radioStateFromProps(props map[string]dbus.Variant) (RadioState, bool) {
	if v, ok := props["PowerState"]; ok {
		if s, ok := v.Value().(string); ok {
			switch s {
			case "on":
				return RadioPoweredOn, true
			case "off", "off-blocked":
				return RadioPoweredOff, true
			case "off-enabling", "on-disabling":
				return RadioResetting, true
			}
		}
	}
	if v, ok := props["Powered"]; ok {
		if on, ok := v.Value().(bool); ok {
			if on {
				return RadioPoweredOn, true
			}
			return RadioPoweredOff, true
		}
	}
	return RadioUnknown, false
}

func radioStateFromError(err error) RadioState {
	name := ""
	var e dbus.Error
	var pe *dbus.Error
	if errors.As(err, &e) {
		name = e.Name
	} else if errors.As(err, &pe) {
		name = pe.Name
	}
	switch name {
	case errAccessDenied:
		return RadioUnauthorized
	case errUnknownObject, errNoSuchAdapter:
		return RadioUnsupported
	}
	return RadioResetting
}
