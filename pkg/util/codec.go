package util

import (
	"encoding/binary"
	"math"

	"github.com/Krajiyah/ble-walkie/pkg/models"
	"github.com/pkg/errors"
)

// ErrMalformedLocation is returned when a location record is not exactly LocationRecordSize bytes
var ErrMalformedLocation = errors.New("malformed location record")

var byteOrder = binary.LittleEndian

// EncodeAudio quantizes pcm amplitudes in [-1, 1] into one byte per SamplesPerAudioByte input samples
func EncodeAudio(samples []float32) []byte {
	out := make([]byte, len(samples)/SamplesPerAudioByte)
	for i := range out {
		amp := float64(samples[i*SamplesPerAudioByte])
		v := math.Round((amp + 1) * 255 / 2)
		out[i] = byte(math.Max(0, math.Min(255, v)))
	}
	return out
}

// DecodeAudio expands each audio byte into SamplesPerAudioByte pcm samples in [-0.5, 0.5].
// Note this is not the inverse of EncodeAudio.
func DecodeAudio(data []byte) []float32 {
	out := make([]float32, len(data)*SamplesPerAudioByte)
	for i, b := range data {
		s := float32(b)/255 - 0.5
		for j := 0; j < SamplesPerAudioByte; j++ {
			out[i*SamplesPerAudioByte+j] = s
		}
	}
	return out
}

// EncodeLocation packs a fix into a LocationRecordSize byte record (latitude, longitude, altitude)
func EncodeLocation(fix models.Fix) []byte {
	b := make([]byte, LocationRecordSize)
	for i, v := range []float64{fix.Latitude, fix.Longitude, fix.Altitude} {
		byteOrder.PutUint64(b[i*8:], math.Float64bits(v))
	}
	return b
}

// DecodeLocation unpacks a location record, anything but LocationRecordSize bytes is malformed
func DecodeLocation(data []byte) (models.Fix, error) {
	if len(data) != LocationRecordSize {
		return models.Fix{}, errors.Wrapf(ErrMalformedLocation, "got %d bytes", len(data))
	}
	v := [3]float64{}
	for i := range v {
		v[i] = math.Float64frombits(byteOrder.Uint64(data[i*8:]))
	}
	return models.Fix{Latitude: v[0], Longitude: v[1], Altitude: v[2]}, nil
}
