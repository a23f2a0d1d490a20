package media

import (
	. "github.com/Krajiyah/ble-walkie/pkg/models"
	"github.com/Krajiyah/ble-walkie/pkg/util"
)

var logger = util.NewLogger("media")

// Recorder captures local PCM audio in frames until Stop
type Recorder interface {
	Start(onFrame func([]float32)) error
	Stop()
}

// Permissions gates access to the microphone
type Permissions interface {
	Status() Permission
	Request(onResult func(Permission))
}

// Granted is the permission model of hosts without a microphone prompt
type Granted struct{}

func (Granted) Status() Permission { return PermissionGranted }

func (Granted) Request(onResult func(Permission)) { onResult(PermissionGranted) }
