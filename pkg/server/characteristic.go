package server

import (
	"strings"

	. "github.com/Krajiyah/ble-walkie/pkg/ble"
	"github.com/go-ble/ble"
)

// BLEWriteCharacteristic is a write without response characteristic handled on the event loop
type BLEWriteCharacteristic struct {
	Uuid        ble.UUID
	HandleWrite func(addr string, data []byte)
}

func getAddrFromReq(req ble.Request) string {
	return strings.ToUpper(req.Conn().RemoteAddr().String())
}

func newWriteChar(loop Dispatcher, char *BLEWriteCharacteristic) *ble.Characteristic {
	c := ble.NewCharacteristic(char.Uuid)
	c.HandleWrite(ble.WriteHandlerFunc(generateWriteHandler(loop, char.HandleWrite)))
	c.Property = ble.CharWriteNR
	return c
}

// generateWriteHandler copies the request payload, go-ble reuses its buffers
// once the handler returns
func generateWriteHandler(loop Dispatcher, onWrite func(addr string, data []byte)) func(req ble.Request, rsp ble.ResponseWriter) {
	return func(req ble.Request, rsp ble.ResponseWriter) {
		addr := getAddrFromReq(req)
		data := append([]byte{}, req.Data()...)
		loop.Post(func() { onWrite(addr, data) })
	}
}
