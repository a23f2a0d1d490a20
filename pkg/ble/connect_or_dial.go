package ble

import (
	"context"

	. "github.com/Krajiyah/ble-walkie/pkg/models"
	"github.com/Krajiyah/ble-walkie/pkg/util"
	"github.com/go-ble/ble"
)

// getLink must be called with d.mutex held
func (d *Device) getLink(peer PeerHandle) *link {
	l, ok := d.links[peer]
	if !ok {
		l = &link{services: map[string]*ble.Service{}, chars: map[string]*ble.Characteristic{}}
		d.links[peer] = l
	}
	return l
}

func (d *Device) peripheralHandler(peer PeerHandle) PeripheralHandler {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if l, ok := d.links[peer]; ok {
		return l.handler
	}
	return nil
}

func (d *Device) client(peer PeerHandle) coreClient {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if l, ok := d.links[peer]; ok {
		return l.cln
	}
	return nil
}

// SetPeripheralHandler routes discovery and write completion events of peer to h
func (d *Device) SetPeripheralHandler(peer PeerHandle, h PeripheralHandler) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.getLink(peer).handler = h
}

func (d *Device) postFailedToConnect(peer PeerHandle, err error) {
	d.loop.Post(func() {
		if h := d.centralHandler(); h != nil {
			h.OnFailedToConnect(peer, err)
		}
	})
}

// Connect dials a peer previously reported by Scan
func (d *Device) Connect(peer PeerHandle) {
	d.mutex.Lock()
	addr, ok := d.addrs[peer]
	l := d.getLink(peer)
	l.gen++
	gen := l.gen
	if l.dialCancel != nil {
		l.dialCancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	l.dialCancel = cancel
	d.mutex.Unlock()
	if !ok {
		cancel()
		d.postFailedToConnect(peer, ErrNoSuchPeer)
		return
	}
	go func() {
		defer cancel()
		cln, err := d.methods.Dial(ctx, addr)
		d.mutex.Lock()
		current := l.gen == gen && !d.released
		if current {
			l.dialCancel = nil
			if err == nil {
				l.cln = cln
			}
		}
		d.mutex.Unlock()
		if !current {
			logger.Debug("dropping stale dial", "peer", peer, "err", err)
			if err == nil {
				cln.CancelConnection()
			}
			return
		}
		if err != nil {
			d.postFailedToConnect(peer, err)
			return
		}
		if _, err := cln.ExchangeMTU(util.MTU); err != nil {
			logger.Warn("ExchangeMTU issue", "peer", peer, "err", err)
		}
		go d.watchDisconnect(peer, cln)
		d.loop.Post(func() {
			if h := d.centralHandler(); h != nil {
				h.OnConnected(peer)
			}
		})
	}()
}

func (d *Device) watchDisconnect(peer PeerHandle, cln coreClient) {
	<-cln.Disconnected()
	d.mutex.Lock()
	current := false
	if l, ok := d.links[peer]; ok && l.cln == cln {
		l.cln = nil
		current = true
	}
	d.mutex.Unlock()
	if !current {
		return
	}
	logger.Info("peer disconnected", "peer", peer)
	d.loop.Post(func() {
		if h := d.centralHandler(); h != nil {
			h.OnDisconnected(peer, nil)
		}
	})
}

// dropLink forgets the connection and any pending dial of l, it must be called with d.mutex held
func (d *Device) dropLink(l *link) coreClient {
	l.gen++
	if l.dialCancel != nil {
		l.dialCancel()
		l.dialCancel = nil
	}
	cln := l.cln
	l.cln = nil
	l.services = map[string]*ble.Service{}
	l.chars = map[string]*ble.Characteristic{}
	return cln
}

func (d *Device) cancelClient(peer PeerHandle, cln coreClient) {
	if err := util.Timeout(cln.CancelConnection, d.timeout); err != nil {
		logger.Warn("CancelConnection issue", "peer", peer, "err", err)
	}
}

// CancelConnection drops the connection (or pending dial) to peer, no disconnect event follows
func (d *Device) CancelConnection(peer PeerHandle) {
	d.mutex.Lock()
	cln := d.dropLink(d.getLink(peer))
	d.mutex.Unlock()
	if cln != nil {
		go d.cancelClient(peer, cln)
	}
}
