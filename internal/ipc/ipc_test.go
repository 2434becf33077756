package ipc

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

type fakeController struct {
	status   StatusResponse
	history  []HistoryRecord
	sessions []SessionInfo
	sweep    SweepResponse
	err      error

	lastUserID int64
	lastLimit  int
}

func (f *fakeController) Status(context.Context) (StatusResponse, error) {
	return f.status, f.err
}

func (f *fakeController) History(_ context.Context, userID int64, limit int) ([]HistoryRecord, error) {
	f.lastUserID = userID
	f.lastLimit = limit
	return f.history, f.err
}

func (f *fakeController) Sessions(context.Context) ([]SessionInfo, error) {
	return f.sessions, f.err
}

func (f *fakeController) Sweep(context.Context) (SweepResponse, error) {
	return f.sweep, f.err
}

func startPair(t *testing.T, controller Controller) *Client {
	t.Helper()
	path := filepath.Join(t.TempDir(), "control.sock")
	server, err := NewServer(context.Background(), path, controller, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	server.Serve()
	t.Cleanup(func() { server.Close() })

	client, err := Dial(path)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestStatusRoundTrip(t *testing.T) {
	controller := &fakeController{status: StatusResponse{
		PID:            1234,
		ActiveSessions: 2,
		JobsTotal:      10,
		JobsDone:       8,
		JobsFailed:     2,
		Checks:         []CheckResult{{Name: "FFmpeg", Passed: true, Detail: "ffmpeg"}},
	}}
	client := startPair(t, controller)

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.PID != 1234 || status.JobsDone != 8 || len(status.Checks) != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestHistoryPassesFilter(t *testing.T) {
	controller := &fakeController{history: []HistoryRecord{{ID: 1, Flow: "upload"}}}
	client := startPair(t, controller)

	records, err := client.History(42, 5)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(records) != 1 || records[0].Flow != "upload" {
		t.Fatalf("unexpected records: %+v", records)
	}
	if controller.lastUserID != 42 || controller.lastLimit != 5 {
		t.Fatalf("filter not forwarded: user=%d limit=%d", controller.lastUserID, controller.lastLimit)
	}
}

func TestControllerErrorSurfaces(t *testing.T) {
	controller := &fakeController{err: errors.New("ledger unavailable")}
	client := startPair(t, controller)

	if _, err := client.History(0, 0); err == nil {
		t.Fatal("expected error from controller")
	}
}

func TestSweepRoundTrip(t *testing.T) {
	controller := &fakeController{sweep: SweepResponse{Removed: 3}}
	client := startPair(t, controller)

	result, err := client.Sweep()
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if result.Removed != 3 {
		t.Fatalf("unexpected sweep result: %+v", result)
	}
}
