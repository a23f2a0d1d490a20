package util

import "github.com/go-ble/ble"

const (
	// MTU is the att mtu requested from peers, a full audio chunk plus att header must fit
	MTU = 512
	// ServiceUUID represents UUID for the ble service carrying the audio and location characteristics
	ServiceUUID = "B17843CE-478A-4C9D-A6E5-BCAE47CE4CC6"
	// AudioCharUUID represents UUID for ble characteristic which receives quantized audio writes
	AudioCharUUID = "263BF3FF-DD3E-4D00-A6FF-5DAA25403F58"
	// LocationCharUUID represents UUID for ble characteristic which receives location records
	LocationCharUUID = "CB443EFB-AF98-470A-BA12-6CEBA4754F48"
	// DeviceName is the local name advertised alongside the service
	DeviceName = "BlueStation"

	// AudioChunkSize is the max number of audio bytes sent in one write
	AudioChunkSize = 400
	// MaxBufferedAudio is the max number of audio bytes retained while waiting for a send slot
	MaxBufferedAudio = 3000
	// SamplesPerAudioByte is the decimation factor between pcm samples and wire bytes
	SamplesPerAudioByte = 4
	// LocationRecordSize is the exact size of a location record on the wire
	LocationRecordSize = 3 * 8
	// DefaultSampleRate is the pcm sample rate assumed for capture and playback
	DefaultSampleRate = 44100
)

// ServiceDescriptor groups the identifiers shared by both roles
type ServiceDescriptor struct {
	Service      ble.UUID
	AudioChar    ble.UUID
	LocationChar ble.UUID
	LocalName    string
}

// Descriptor is the process wide service descriptor
var Descriptor = ServiceDescriptor{
	Service:      ble.MustParse(ServiceUUID),
	AudioChar:    ble.MustParse(AudioCharUUID),
	LocationChar: ble.MustParse(LocationCharUUID),
	LocalName:    DeviceName,
}

// CharacteristicIDs lists the characteristics a session must bind before it is ready
func (d ServiceDescriptor) CharacteristicIDs() []ble.UUID {
	return []ble.UUID{d.AudioChar, d.LocationChar}
}
