package client

import (
	. "github.com/Krajiyah/ble-walkie/pkg/ble"
	. "github.com/Krajiyah/ble-walkie/pkg/models"
	"github.com/Krajiyah/ble-walkie/pkg/util"
	"github.com/go-ble/ble"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var logger = util.NewLogger("client")

var (
	// ErrServiceNotFound closes a session whose peer does not expose the walkie service
	ErrServiceNotFound = errors.New("walkie service not found")
	// ErrCharacteristicNotFound closes a session whose peer lacks the audio or location characteristic
	ErrCharacteristicNotFound = errors.New("walkie characteristic not found")
)

// StreamSession owns one connection to a peer: it walks the connect and
// discovery handshake and then flow controls audio and location writes,
// keeping at most one write outstanding.
type StreamSession struct {
	id           string
	peer         PeerHandle
	state        SessionState
	central      Central
	listener     SessionListener
	audio        *audioBuffer
	location     []byte
	canSend      bool
	audioChar    ble.UUID
	locationChar ble.UUID
}

func newStreamSession(peer PeerHandle, central Central) *StreamSession {
	s := &StreamSession{
		id:      uuid.New().String(),
		peer:    peer,
		state:   SessionConnecting,
		central: central,
		audio:   newAudioBuffer(util.MaxBufferedAudio),
		canSend: true,
	}
	central.SetPeripheralHandler(peer, s)
	central.Connect(peer)
	logger.Info("session connecting", "session", s.id, "peer", peer)
	return s
}

func (s *StreamSession) ID() string          { return s.id }
func (s *StreamSession) Peer() PeerHandle    { return s.peer }
func (s *StreamSession) State() SessionState { return s.state }

// IsValid reports whether the session can still reach Ready or is Ready
func (s *StreamSession) IsValid() bool { return s.state != SessionClosed }

// SetListener registers the owner of the session, nil detaches it
func (s *StreamSession) SetListener(l SessionListener) { s.listener = l }

func (s *StreamSession) setState(state SessionState) {
	logger.Info("session state changed", "session", s.id, "from", s.state, "to", state)
	s.state = state
}

// closed moves to Closed and notifies the owner once
func (s *StreamSession) closed(err error) {
	if s.state == SessionClosed {
		return
	}
	s.setState(SessionClosed)
	s.release()
	if err != nil {
		logger.Warn("session closed", "session", s.id, "err", err)
	}
	if s.listener != nil {
		s.listener.OnSessionClosed(s.id, err)
	}
}

// abort tears down a connected link after a failed handshake step
func (s *StreamSession) abort(err error) {
	s.central.CancelConnection(s.peer)
	s.closed(err)
}

func (s *StreamSession) release() {
	s.audio.Reset()
	s.location = nil
	s.audioChar, s.locationChar = nil, nil
}

func (s *StreamSession) OnConnected() {
	if s.state != SessionConnecting {
		return
	}
	s.central.DiscoverServices(s.peer, []ble.UUID{util.Descriptor.Service})
	s.setState(SessionAwaitingServices)
}

func (s *StreamSession) OnDisconnected(err error) {
	if err == nil {
		err = errors.New("peer disconnected")
	}
	s.closed(err)
}

func (s *StreamSession) OnFailedToConnect(err error) {
	s.closed(errors.Wrap(err, "Connect issue"))
}

func (s *StreamSession) OnServicesDiscovered(services []ble.UUID, err error) {
	if s.state != SessionAwaitingServices {
		return
	}
	if err != nil {
		s.abort(err)
		return
	}
	if !util.ContainsUUID(services, util.Descriptor.Service) {
		s.abort(ErrServiceNotFound)
		return
	}
	s.central.DiscoverCharacteristics(s.peer, util.Descriptor.Service, util.Descriptor.CharacteristicIDs())
	s.setState(SessionAwaitingCharacteristics)
}

func (s *StreamSession) OnCharacteristicsDiscovered(chars []ble.UUID, err error) {
	if s.state != SessionAwaitingCharacteristics {
		return
	}
	if err != nil {
		s.abort(err)
		return
	}
	if !util.ContainsUUID(chars, util.Descriptor.AudioChar) || !util.ContainsUUID(chars, util.Descriptor.LocationChar) {
		s.abort(ErrCharacteristicNotFound)
		return
	}
	s.audioChar = util.Descriptor.AudioChar
	s.locationChar = util.Descriptor.LocationChar
	s.setState(SessionReady)
	if s.listener != nil {
		s.listener.OnSessionReady(s.id)
	}
}

// EnqueueAudio buffers encoded audio and sends right away if no write is outstanding
func (s *StreamSession) EnqueueAudio(data []byte) {
	if s.state != SessionReady {
		return
	}
	s.audio.Push(data)
	if s.canSend {
		s.trySend()
	}
}

// SetLocation replaces the pending location record. It goes out on the next write completion.
func (s *StreamSession) SetLocation(fix Fix) {
	if s.state != SessionReady {
		return
	}
	s.location = util.EncodeLocation(fix)
}

// Close disconnects from the peer. The owner is not notified.
func (s *StreamSession) Close() {
	if s.state == SessionClosed {
		return
	}
	s.central.CancelConnection(s.peer)
	s.setState(SessionClosed)
	s.release()
}

func (s *StreamSession) trySend() {
	if s.state != SessionReady || s.audioChar == nil {
		return
	}
	chunk := s.audio.Pop(util.AudioChunkSize)
	if len(chunk) == 0 {
		return
	}
	s.write(s.audioChar, chunk)
}

func (s *StreamSession) write(char ble.UUID, data []byte) {
	s.canSend = false
	if logger.IsDebug() {
		logger.Debug("write", "session", s.id, "char", char, "len", len(data), "buffered", s.audio.Len())
	}
	s.central.WriteWithoutResponse(s.peer, char, data)
}

// OnReadyToSend is the write completion of the transport. Exactly one write
// follows per completion while data is waiting, location first.
func (s *StreamSession) OnReadyToSend() {
	if s.state != SessionReady {
		return
	}
	if s.location != nil {
		record := s.location
		s.location = nil
		s.write(s.locationChar, record)
		return
	}
	if s.audio.Len() > 0 {
		s.trySend()
		return
	}
	s.canSend = true
}
