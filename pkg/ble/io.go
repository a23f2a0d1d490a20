package ble

import (
	. "github.com/Krajiyah/ble-walkie/pkg/models"
	"github.com/Krajiyah/ble-walkie/pkg/util"
	"github.com/go-ble/ble"
	"github.com/pkg/errors"
)

// DiscoverServices looks up the services in ids on a connected peer
func (d *Device) DiscoverServices(peer PeerHandle, ids []ble.UUID) {
	cln := d.client(peer)
	go func() {
		var found []ble.UUID
		err := util.CatchErrs(func() error {
			if cln == nil {
				return ErrNoSuchPeer
			}
			svcs, err := cln.DiscoverServices(ids)
			if err != nil {
				return err
			}
			d.mutex.Lock()
			l := d.getLink(peer)
			for _, s := range svcs {
				l.services[s.UUID.String()] = s
				found = append(found, s.UUID)
			}
			d.mutex.Unlock()
			return nil
		})
		if err != nil {
			err = errors.Wrap(err, "DiscoverServices issue")
		}
		d.loop.Post(func() {
			if h := d.peripheralHandler(peer); h != nil {
				h.OnServicesDiscovered(found, err)
			}
		})
	}()
}

// DiscoverCharacteristics looks up the characteristics in ids of a previously discovered service
func (d *Device) DiscoverCharacteristics(peer PeerHandle, service ble.UUID, ids []ble.UUID) {
	cln := d.client(peer)
	d.mutex.Lock()
	svc := d.getLink(peer).services[service.String()]
	d.mutex.Unlock()
	go func() {
		var found []ble.UUID
		err := util.CatchErrs(func() error {
			if cln == nil || svc == nil {
				return ErrNoSuchPeer
			}
			chars, err := cln.DiscoverCharacteristics(ids, svc)
			if err != nil {
				return err
			}
			d.mutex.Lock()
			l := d.getLink(peer)
			for _, c := range chars {
				l.chars[c.UUID.String()] = c
				found = append(found, c.UUID)
			}
			d.mutex.Unlock()
			return nil
		})
		if err != nil {
			err = errors.Wrap(err, "DiscoverCharacteristics issue")
		}
		d.loop.Post(func() {
			if h := d.peripheralHandler(peer); h != nil {
				h.OnCharacteristicsDiscovered(found, err)
			}
		})
	}()
}

// WriteWithoutResponse writes data to a discovered characteristic. OnReadyToSend
// follows once the radio accepted the write. A failed write drops the link and
// is reported as OnDisconnected.
func (d *Device) WriteWithoutResponse(peer PeerHandle, char ble.UUID, data []byte) {
	d.mutex.Lock()
	l := d.getLink(peer)
	cln, c := l.cln, l.chars[char.String()]
	d.mutex.Unlock()
	if cln == nil || c == nil {
		logger.Warn("write to unknown characteristic", "peer", peer, "char", char)
		return
	}
	go func() {
		err := util.CatchErrs(func() error {
			return cln.WriteCharacteristic(c, data, true)
		})
		if err != nil {
			d.writeFailed(peer, cln, errors.Wrap(err, "WriteCharacteristic issue"))
			return
		}
		if logger.IsDebug() {
			logger.Debug("wrote", "peer", peer, "char", char, "len", len(data))
		}
		d.loop.Post(func() {
			if h := d.peripheralHandler(peer); h != nil {
				h.OnReadyToSend()
			}
		})
	}()
}

func (d *Device) writeFailed(peer PeerHandle, cln coreClient, err error) {
	d.mutex.Lock()
	current := false
	if l, ok := d.links[peer]; ok && l.cln == cln {
		d.dropLink(l)
		current = true
	}
	d.mutex.Unlock()
	if !current {
		return
	}
	logger.Warn("dropping link after failed write", "peer", peer, "err", err)
	d.cancelClient(peer, cln)
	d.loop.Post(func() {
		if h := d.centralHandler(); h != nil {
			h.OnDisconnected(peer, err)
		}
	})
}
