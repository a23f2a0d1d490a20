package internal

import (
	"sync"

	"github.com/go-ble/ble"
)

// Write is one characteristic write observed by DummyCoreClient
type Write struct {
	Char  ble.UUID
	Data  []byte
	NoRsp bool
}

// DummyCoreClient is an in memory stand in for a connected go-ble client
type DummyCoreClient struct {
	Services     []*ble.Service
	Writes       chan Write
	WriteErr     error
	disconnected chan struct{}
	once         sync.Once
	mutex        sync.Mutex
	cancelled    int
}

func NewDummyCoreClient(services []*ble.Service) *DummyCoreClient {
	return &DummyCoreClient{Services: services, Writes: make(chan Write, 64), disconnected: make(chan struct{})}
}

func (c *DummyCoreClient) ExchangeMTU(rxMTU int) (txMTU int, err error) { return rxMTU, nil }

func (c *DummyCoreClient) DiscoverServices(filter []ble.UUID) ([]*ble.Service, error) {
	ret := []*ble.Service{}
	for _, s := range c.Services {
		if matches(filter, s.UUID) {
			ret = append(ret, s)
		}
	}
	return ret, nil
}

func (c *DummyCoreClient) DiscoverCharacteristics(filter []ble.UUID, s *ble.Service) ([]*ble.Characteristic, error) {
	ret := []*ble.Characteristic{}
	for _, char := range s.Characteristics {
		if matches(filter, char.UUID) {
			ret = append(ret, char)
		}
	}
	return ret, nil
}

func (c *DummyCoreClient) WriteCharacteristic(char *ble.Characteristic, value []byte, noRsp bool) error {
	if c.WriteErr != nil {
		return c.WriteErr
	}
	c.Writes <- Write{char.UUID, append([]byte{}, value...), noRsp}
	return nil
}

func (c *DummyCoreClient) CancelConnection() error {
	c.mutex.Lock()
	c.cancelled++
	c.mutex.Unlock()
	c.Disconnect()
	return nil
}

// Cancelled returns how often CancelConnection was called
func (c *DummyCoreClient) Cancelled() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.cancelled
}

// Disconnect simulates the remote side dropping the link
func (c *DummyCoreClient) Disconnect() {
	c.once.Do(func() { close(c.disconnected) })
}

func (c *DummyCoreClient) Disconnected() <-chan struct{} { return c.disconnected }

func matches(filter []ble.UUID, u ble.UUID) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if f.Equal(u) {
			return true
		}
	}
	return false
}
