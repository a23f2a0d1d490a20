package client

// audioBuffer is the bounded outbound audio ring. Pushing past capacity
// discards the oldest bytes so the most recent audio survives.
type audioBuffer struct {
	data     []byte
	capacity int
}

func newAudioBuffer(capacity int) *audioBuffer {
	return &audioBuffer{data: make([]byte, 0, capacity), capacity: capacity}
}

func (b *audioBuffer) Push(p []byte) {
	if len(p) >= b.capacity {
		b.data = append(b.data[:0], p[len(p)-b.capacity:]...)
		return
	}
	if over := len(b.data) + len(p) - b.capacity; over > 0 {
		n := copy(b.data, b.data[over:])
		b.data = b.data[:n]
	}
	b.data = append(b.data, p...)
}

// Pop removes and returns up to n bytes from the front
func (b *audioBuffer) Pop(n int) []byte {
	if n > len(b.data) {
		n = len(b.data)
	}
	ret := append([]byte{}, b.data[:n]...)
	rest := copy(b.data, b.data[n:])
	b.data = b.data[:rest]
	return ret
}

func (b *audioBuffer) Len() int { return len(b.data) }

func (b *audioBuffer) Bytes() []byte { return append([]byte{}, b.data...) }

func (b *audioBuffer) Reset() { b.data = b.data[:0] }
