package socket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"mediagate/internal/logging"
	"mediagate/internal/media"
	"mediagate/internal/messaging"
)

// ErrNoConnector reports an outbound operation attempted while no
// connector process is attached to the transport socket.
var ErrNoConnector = errors.New("no connector attached")

// Handler consumes inbound events. Calls arrive from the read loop, one
// at a time per connection; the handler decides its own concurrency.
type Handler func(messaging.Event)

// Option configures the server.
type Option func(*Server)

// WithAckTimeout bounds how long text sends wait for the connector's ack.
func WithAckTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.ackTimeout = d
		}
	}
}

// WithDeliveryTimeout bounds media sends and file retrievals, which move
// large payloads and need far more headroom than an ack.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.deliveryTimeout = d
		}
	}
}

// Server owns the transport socket. It implements messaging.Messenger and
// media.FileSource; inbound events go to the handler.
type Server struct {
	path    string
	handler Handler
	logger  *slog.Logger

	ackTimeout      time.Duration
	deliveryTimeout time.Duration

	listener net.Listener
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu      sync.Mutex
	conn    net.Conn
	pending map[string]chan envelope
}

// NewServer binds the transport socket. A stale socket file from a
// previous run is removed first.
func NewServer(ctx context.Context, path string, handler Handler, logger *slog.Logger, opts ...Option) (*Server, error) {
	if handler == nil {
		return nil, errors.New("transport handler required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}
	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:            path,
		handler:         handler,
		logger:          logging.WithComponent(logger, "transport"),
		ackTimeout:      30 * time.Second,
		deliveryTimeout: 10 * time.Minute,
		listener:        listener,
		ctx:             serverCtx,
		cancel:          cancel,
		pending:         make(map[string]chan envelope),
	}, nil
}

// Serve accepts connector connections until the context is cancelled.
// A new connection replaces the previous one.
func (s *Server) Serve() {
	s.logger.Info("transport listening", slog.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.attach(conn)
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.readLoop(c)
			}(conn)
		}
	}()
}

// Close tears the server down and removes the socket file.
func (s *Server) Close() error {
	s.cancel()
	err := s.listener.Close()
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.failPendingLocked(ErrNoConnector)
	s.mu.Unlock()
	s.wg.Wait()
	if removeErr := os.Remove(s.path); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) && err == nil {
		err = removeErr
	}
	return err
}

// Connected reports whether a connector is currently attached.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

func (s *Server) attach(conn net.Conn) {
	s.mu.Lock()
	if s.conn != nil {
		s.logger.Warn("connector replaced")
		s.conn.Close()
		s.failPendingLocked(ErrNoConnector)
	}
	s.conn = conn
	s.mu.Unlock()
	s.logger.Info("connector attached")
}

func (s *Server) readLoop(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var env envelope
		if err := json.Unmarshal(line, &env); err != nil {
			s.logger.Warn("malformed frame dropped", logging.Error(err))
			continue
		}
		switch env.Type {
		case frameEvent:
			s.handler(eventFromEnvelope(env))
		case frameResult:
			s.resolve(env)
		default:
			s.logger.Warn("unknown frame type", slog.String("frame_type", env.Type))
		}
	}
	s.detach(conn)
}

func (s *Server) detach(conn net.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
		s.failPendingLocked(ErrNoConnector)
		s.logger.Info("connector detached")
	}
	s.mu.Unlock()
	conn.Close()
}

func eventFromEnvelope(env envelope) messaging.Event {
	event := messaging.Event{
		ID:         env.ID,
		UserID:     env.UserID,
		Kind:       messaging.EventKind(env.Kind),
		Text:       env.Text,
		ButtonCode: env.ButtonCode,
		ReceivedAt: time.Now(),
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if env.File != nil {
		event.File = &messaging.FileAttachment{
			Handle:    media.FileHandle(env.File.Handle),
			Name:      env.File.Name,
			SizeBytes: env.File.SizeBytes,
		}
	}
	return event
}

// roundTrip writes one frame and waits for the connector's matching
// result, bounded by both timeout and the caller's context.
func (s *Server) roundTrip(ctx context.Context, env envelope, timeout time.Duration) error {
	_, err := s.roundTripResult(ctx, env, timeout)
	return err
}

// roundTripResult is roundTrip returning the result frame, for sends
// whose result carries data (such as the message reference of send_text).
func (s *Server) roundTripResult(ctx context.Context, env envelope, timeout time.Duration) (envelope, error) {
	env.ID = uuid.NewString()
	reply := make(chan envelope, 1)

	s.mu.Lock()
	conn := s.conn
	if conn == nil {
		s.mu.Unlock()
		return envelope{}, ErrNoConnector
	}
	s.pending[env.ID] = reply
	payload, err := json.Marshal(env)
	if err != nil {
		delete(s.pending, env.ID)
		s.mu.Unlock()
		return envelope{}, fmt.Errorf("encode frame: %w", err)
	}
	_, err = conn.Write(append(payload, '\n'))
	s.mu.Unlock()
	if err != nil {
		s.forget(env.ID)
		return envelope{}, fmt.Errorf("write frame: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case result := <-reply:
		if !result.OK {
			if result.Error == "" {
				result.Error = "connector rejected request"
			}
			return envelope{}, errors.New(result.Error)
		}
		return result, nil
	case <-ctx.Done():
		s.forget(env.ID)
		return envelope{}, ctx.Err()
	case <-timer.C:
		s.forget(env.ID)
		return envelope{}, fmt.Errorf("connector did not respond within %s", timeout)
	}
}

func (s *Server) resolve(env envelope) {
	s.mu.Lock()
	reply, ok := s.pending[env.ID]
	if ok {
		delete(s.pending, env.ID)
	}
	s.mu.Unlock()
	if ok {
		reply <- env
	}
}

func (s *Server) forget(id string) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// failPendingLocked answers every outstanding round trip with err.
// Caller holds s.mu.
func (s *Server) failPendingLocked(err error) {
	for id, reply := range s.pending {
		reply <- envelope{Type: frameResult, ID: id, OK: false, Error: err.Error()}
		delete(s.pending, id)
	}
}

func (s *Server) SendText(ctx context.Context, userID int64, text string) (string, error) {
	result, err := s.roundTripResult(ctx, envelope{Type: frameSendText, UserID: userID, Text: text}, s.ackTimeout)
	if err != nil {
		return "", err
	}
	return result.MessageID, nil
}

func (s *Server) EditText(ctx context.Context, userID int64, messageID, text string) error {
	return s.roundTrip(ctx, envelope{Type: frameEditText, UserID: userID, MessageID: messageID, Text: text}, s.ackTimeout)
}

func (s *Server) SendOptions(ctx context.Context, userID int64, text string, options []messaging.Option) error {
	refs := make([]optionRef, 0, len(options))
	for _, opt := range options {
		refs = append(refs, optionRef{Code: opt.Code, Label: opt.Label})
	}
	return s.roundTrip(ctx, envelope{Type: frameSendOptions, UserID: userID, Text: text, Options: refs}, s.ackTimeout)
}

func (s *Server) SendAudio(ctx context.Context, userID int64, path, title string) error {
	return s.roundTrip(ctx, envelope{Type: frameSendAudio, UserID: userID, Path: path, Caption: title}, s.deliveryTimeout)
}

func (s *Server) SendVideo(ctx context.Context, userID int64, path, caption string) error {
	return s.roundTrip(ctx, envelope{Type: frameSendVideo, UserID: userID, Path: path, Caption: caption}, s.deliveryTimeout)
}

func (s *Server) SendDocument(ctx context.Context, userID int64, path, caption string) error {
	return s.roundTrip(ctx, envelope{Type: frameSendDocument, UserID: userID, Path: path, Caption: caption}, s.deliveryTimeout)
}

// Retrieve asks the connector to materialize an uploaded file at destPath.
func (s *Server) Retrieve(ctx context.Context, handle media.FileHandle, destPath string) error {
	return s.roundTrip(ctx, envelope{Type: frameRetrieve, Handle: string(handle), DestPath: destPath}, s.deliveryTimeout)
}

var (
	_ messaging.Messenger = (*Server)(nil)
	_ media.FileSource    = (*Server)(nil)
)
