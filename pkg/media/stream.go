package media

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
	"time"

	"github.com/Krajiyah/ble-walkie/pkg/util"
	"github.com/pkg/errors"
)

const sampleSize = 4

// ErrRecording is returned when Start is called on a running recorder
var ErrRecording = errors.New("recorder already running")

// StreamRecorder reads mono little-endian float32 PCM from a reader in
// frames of about a quarter second. A single goroutine owns the reader for
// the lifetime of the recorder, a frame read while stopped is held until the
// next Start.
type StreamRecorder struct {
	reader    io.Reader
	frameSize int
	pace      time.Duration
	mutex     sync.Mutex
	cond      *sync.Cond
	onFrame   func([]float32)
	reading   bool
}

// NewStreamRecorder creates a recorder for sampleRate. A paced recorder
// delivers at most one frame per frame duration, as a microphone would.
func NewStreamRecorder(reader io.Reader, sampleRate int, paced bool) *StreamRecorder {
	frameSize := sampleRate / 4
	frameSize -= frameSize % util.SamplesPerAudioByte
	if frameSize < util.SamplesPerAudioByte {
		frameSize = util.SamplesPerAudioByte
	}
	r := &StreamRecorder{reader: reader, frameSize: frameSize}
	r.cond = sync.NewCond(&r.mutex)
	if paced {
		r.pace = time.Second / 4
	}
	return r
}

// Start delivers frames to onFrame until Stop. onFrame runs with the recorder
// locked and must not call back into it.
func (r *StreamRecorder) Start(onFrame func([]float32)) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.onFrame != nil {
		return ErrRecording
	}
	r.onFrame = onFrame
	if !r.reading {
		r.reading = true
		go r.run()
	}
	r.cond.Broadcast()
	logger.Info("recording", "frame", r.frameSize)
	return nil
}

func (r *StreamRecorder) Stop() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.onFrame != nil {
		r.onFrame = nil
		logger.Info("recording stopped")
	}
}

// deliver blocks until the recorder is started, then hands samples to the current callback
func (r *StreamRecorder) deliver(samples []float32) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for r.onFrame == nil {
		r.cond.Wait()
	}
	r.onFrame(samples)
}

func (r *StreamRecorder) run() {
	buf := make([]byte, r.frameSize*sampleSize)
	var tick <-chan time.Time
	if r.pace > 0 {
		ticker := time.NewTicker(r.pace)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		n, err := io.ReadFull(r.reader, buf)
		if n >= sampleSize {
			r.deliver(DecodeSamples(buf[:n-n%sampleSize]))
		}
		if err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				logger.Warn("audio input failed", "err", err)
			}
			return
		}
		if tick != nil {
			<-tick
		}
	}
}

// StreamPlayer writes decoded audio as little-endian float32 PCM
type StreamPlayer struct {
	writer io.Writer
	mutex  sync.Mutex
}

func NewStreamPlayer(writer io.Writer) *StreamPlayer {
	return &StreamPlayer{writer: writer}
}

func (p *StreamPlayer) Play(samples []float32) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if _, err := p.writer.Write(EncodeSamples(samples)); err != nil {
		logger.Warn("audio output failed", "err", errors.Wrap(err, "Play issue"))
	}
}

// EncodeSamples packs samples as little-endian float32
func EncodeSamples(samples []float32) []byte {
	ret := make([]byte, len(samples)*sampleSize)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(ret[i*sampleSize:], math.Float32bits(s))
	}
	return ret
}

// DecodeSamples unpacks little-endian float32 samples, a trailing partial sample is ignored
func DecodeSamples(data []byte) []float32 {
	ret := make([]float32, len(data)/sampleSize)
	for i := range ret {
		ret[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*sampleSize:]))
	}
	return ret
}
