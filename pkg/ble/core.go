package ble

import (
	"context"
	"time"

	"github.com/Krajiyah/ble-walkie/pkg/util"
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/pkg/errors"
)

// coreClient is the part of ble.Client a session link needs
type coreClient interface {
	ExchangeMTU(rxMTU int) (txMTU int, err error)
	DiscoverServices(filter []ble.UUID) ([]*ble.Service, error)
	DiscoverCharacteristics(filter []ble.UUID, s *ble.Service) ([]*ble.Characteristic, error)
	WriteCharacteristic(c *ble.Characteristic, value []byte, noRsp bool) error
	CancelConnection() error
	Disconnected() <-chan struct{}
}

type coreMethods interface {
	SetDefaultDevice(time.Duration) error
	Stop() error
	Dial(context.Context, ble.Addr) (coreClient, error)
	Scan(context.Context, ble.AdvHandler, ble.AdvFilter) error
	AdvertiseNameAndServices(context.Context, string, ...ble.UUID) error
	AddService(*ble.Service) error
}

type realCoreMethods struct{}

func (bc *realCoreMethods) Dial(ctx context.Context, addr ble.Addr) (coreClient, error) {
	var client coreClient
	err := util.CatchErrs(func() error {
		c, e := ble.Dial(ctx, addr)
		if e != nil {
			return e
		}
		client = c
		return nil
	})
	return client, err
}

func (bc *realCoreMethods) Scan(ctx context.Context, h ble.AdvHandler, f ble.AdvFilter) error {
	return util.CatchErrs(func() error {
		return ble.Scan(ctx, false, h, f)
	})
}

func (bc *realCoreMethods) AdvertiseNameAndServices(ctx context.Context, name string, uuids ...ble.UUID) error {
	return util.CatchErrs(func() error {
		return ble.AdvertiseNameAndServices(ctx, name, uuids...)
	})
}

func (bc *realCoreMethods) AddService(s *ble.Service) error {
	return util.CatchErrs(func() error {
		return ble.AddService(s)
	})
}

func (bc *realCoreMethods) Stop() error {
	return util.CatchErrs(ble.Stop)
}

func (bc *realCoreMethods) newLinuxDevice(timeout time.Duration) (ble.Device, error) {
	opts := []ble.Option{
		ble.OptDialerTimeout(timeout), // client to server timeout
	}
	return linux.NewDevice(opts...)
}

func (bc *realCoreMethods) SetDefaultDevice(timeout time.Duration) error {
	return util.CatchErrs(func() error {
		device, err := bc.newLinuxDevice(timeout)
		if err != nil {
			return errors.Wrap(err, "newLinuxDevice issue")
		}
		ble.SetDefaultDevice(device)
		return nil
	})
}
