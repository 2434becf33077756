package socket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"mediagate/internal/messaging"
)

type testConnector struct {
	t    *testing.T
	conn net.Conn
	rd   *bufio.Reader
}

func startServer(t *testing.T, handler Handler, opts ...Option) (*Server, *testConnector) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transport.sock")
	srv, err := NewServer(context.Background(), path, handler, nil, opts...)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() { srv.Close() })

	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return srv, &testConnector{t: t, conn: conn, rd: bufio.NewReader(conn)}
}

func (c *testConnector) send(env envelope) {
	c.t.Helper()
	payload, err := json.Marshal(env)
	if err != nil {
		c.t.Fatalf("marshal: %v", err)
	}
	if _, err := c.conn.Write(append(payload, '\n')); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

func (c *testConnector) read() envelope {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	line, err := c.rd.ReadBytes('\n')
	if err != nil {
		c.t.Fatalf("read frame: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		c.t.Fatalf("unmarshal %q: %v", line, err)
	}
	return env
}

func TestInboundEventReachesHandler(t *testing.T) {
	events := make(chan messaging.Event, 1)
	_, connector := startServer(t, func(e messaging.Event) { events <- e })

	connector.send(envelope{
		Type:   frameEvent,
		UserID: 99,
		Kind:   string(messaging.EventFileUpload),
		File:   &fileRef{Handle: "h-1", Name: "clip.mkv", SizeBytes: 2048},
	})

	select {
	case event := <-events:
		if event.UserID != 99 || event.Kind != messaging.EventFileUpload {
			t.Fatalf("unexpected event: %+v", event)
		}
		if event.File == nil || event.File.Name != "clip.mkv" || event.File.SizeBytes != 2048 {
			t.Fatalf("attachment lost: %+v", event.File)
		}
		if event.ID == "" {
			t.Fatal("event id should be assigned")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event never delivered")
	}
}

func TestSendTextRoundTrip(t *testing.T) {
	srv, connector := startServer(t, func(messaging.Event) {})

	type sendResult struct {
		id  string
		err error
	}
	done := make(chan sendResult, 1)
	go func() {
		id, err := srv.SendText(context.Background(), 7, "hello")
		done <- sendResult{id: id, err: err}
	}()

	frame := connector.read()
	if frame.Type != frameSendText || frame.UserID != 7 || frame.Text != "hello" {
		t.Fatalf("unexpected frame: %+v", frame)
	}
	connector.send(envelope{Type: frameResult, ID: frame.ID, OK: true, MessageID: "msg-31"})

	result := <-done
	if result.err != nil {
		t.Fatalf("SendText: %v", result.err)
	}
	if result.id != "msg-31" {
		t.Fatalf("message reference lost: %q", result.id)
	}
}

func TestEditTextFrameCarriesMessageID(t *testing.T) {
	srv, connector := startServer(t, func(messaging.Event) {})

	done := make(chan error, 1)
	go func() {
		done <- srv.EditText(context.Background(), 7, "msg-31", "updated")
	}()

	frame := connector.read()
	if frame.Type != frameEditText || frame.MessageID != "msg-31" || frame.Text != "updated" {
		t.Fatalf("unexpected frame: %+v", frame)
	}
	connector.send(envelope{Type: frameResult, ID: frame.ID, OK: true})
	if err := <-done; err != nil {
		t.Fatalf("EditText: %v", err)
	}
}

func TestSendSurfacesConnectorError(t *testing.T) {
	srv, connector := startServer(t, func(messaging.Event) {})

	done := make(chan error, 1)
	go func() {
		done <- srv.SendVideo(context.Background(), 7, "/tmp/a.mp4", "caption")
	}()

	frame := connector.read()
	connector.send(envelope{Type: frameResult, ID: frame.ID, OK: false, Error: "payload too large"})

	err := <-done
	if err == nil || err.Error() != "payload too large" {
		t.Fatalf("expected connector error, got %v", err)
	}
}

func TestSendWithoutConnectorFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transport.sock")
	srv, err := NewServer(context.Background(), path, func(messaging.Event) {}, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	defer srv.Close()
	srv.Serve()

	if _, err := srv.SendText(context.Background(), 1, "x"); !errors.Is(err, ErrNoConnector) {
		t.Fatalf("expected ErrNoConnector, got %v", err)
	}
}

func TestPendingFailsWhenConnectorDetaches(t *testing.T) {
	srv, connector := startServer(t, func(messaging.Event) {})

	done := make(chan error, 1)
	go func() {
		_, err := srv.SendText(context.Background(), 7, "hello")
		done <- err
	}()
	connector.read()
	connector.conn.Close()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected failure after detach")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("send never failed after detach")
	}
}

func TestRetrieveFrameCarriesHandleAndDest(t *testing.T) {
	srv, connector := startServer(t, func(messaging.Event) {})

	done := make(chan error, 1)
	go func() {
		done <- srv.Retrieve(context.Background(), "h-42", "/tmp/42/work.mkv")
	}()

	frame := connector.read()
	if frame.Type != frameRetrieve || frame.Handle != "h-42" || frame.DestPath != "/tmp/42/work.mkv" {
		t.Fatalf("unexpected frame: %+v", frame)
	}
	connector.send(envelope{Type: frameResult, ID: frame.ID, OK: true})
	if err := <-done; err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
}
