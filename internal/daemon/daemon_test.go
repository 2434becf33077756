package daemon

import (
	"context"
	"errors"
	"testing"

	"mediagate/internal/testsupport"
)

func TestStartAndClose(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	status, err := d.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.PID == 0 || status.ConnectorAttached {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.JobsTotal != 0 {
		t.Fatalf("fresh ledger should be empty: %+v", status)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSecondInstanceRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Close()

	secondCfg := *cfg
	secondCfg.Paths.TransportSocket = cfg.Paths.TransportSocket + ".2"
	secondCfg.Paths.ControlSocket = cfg.Paths.ControlSocket + ".2"
	second, err := New(&secondCfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := second.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestControlBeforeStartFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := d.Status(context.Background()); err == nil {
		t.Fatal("Status before Start should fail")
	}
	if _, err := d.Sessions(context.Background()); err == nil {
		t.Fatal("Sessions before Start should fail")
	}
}

func TestSweepThroughControlSurface(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Close()

	result, err := d.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if result.Error != "" {
		t.Fatalf("sweep reported error: %+v", result)
	}
}
