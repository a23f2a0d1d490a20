package util

import (
	"github.com/go-ble/ble"
)

// ContainsUUID reports whether u is in list
func ContainsUUID(list []ble.UUID, u ble.UUID) bool {
	for _, o := range list {
		if o.Equal(u) {
			return true
		}
	}
	return false
}
