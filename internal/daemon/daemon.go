package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"log/slog"

	"github.com/gofrs/flock"

	"mediagate/internal/artifacts"
	"mediagate/internal/config"
	"mediagate/internal/gateway"
	"mediagate/internal/history"
	"mediagate/internal/logging"
	"mediagate/internal/media/toolset"
	"mediagate/internal/messaging"
	"mediagate/internal/messaging/socket"
	"mediagate/internal/preflight"
	"mediagate/internal/session"
)

// ErrAlreadyRunning reports that another daemon holds the instance lock.
var ErrAlreadyRunning = errors.New("daemon already running")

// Daemon owns the lifecycle of every long-lived component.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	lock     *flock.Flock
	lockPath string

	mu        sync.Mutex
	started   bool
	cancel    context.CancelFunc
	store     *artifacts.Store
	sessions  *session.Store
	ledger    *history.Store
	sweeper   *artifacts.Sweeper
	transport *socket.Server
	gateway   *gateway.Gateway
}

// New prepares a daemon; nothing runs until Start.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "mediagated.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		lock:     flock.New(lockPath),
		lockPath: lockPath,
	}, nil
}

// Start acquires the instance lock and brings every component up.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return errors.New("daemon already started")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", d.lockPath, err)
	}
	if !ok {
		return fmt.Errorf("%w (lock held at %s)", ErrAlreadyRunning, d.lockPath)
	}

	for _, result := range preflight.RunAll(d.cfg) {
		if result.Passed {
			d.logger.Debug("preflight ok", slog.String("check", result.Name), slog.String("detail", result.Detail))
			continue
		}
		d.logger.Warn("preflight failed", slog.String("check", result.Name), slog.String("detail", result.Detail))
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	store, err := artifacts.NewStore(d.cfg.Paths.TempDir, d.cfg.Paths.StorageDir)
	if err != nil {
		cancel()
		d.unlock()
		return err
	}
	ledger, err := history.Open(d.cfg.Paths.LogDir)
	if err != nil {
		cancel()
		d.unlock()
		return err
	}

	sessions := session.NewStore(func(paths []string) {
		for _, path := range paths {
			if err := store.Discard(path); err != nil {
				d.logger.Warn("orphan discard failed", logging.Error(err), slog.String("path", path))
			}
		}
	})

	transport, err := socket.NewServer(
		runCtx,
		d.cfg.Paths.TransportSocket,
		func(event messaging.Event) { d.handleEvent(event) },
		d.logger,
		socket.WithDeliveryTimeout(time.Duration(d.cfg.Tools.DeliveryTimeoutMinutes)*time.Minute),
	)
	if err != nil {
		cancel()
		_ = ledger.Close()
		d.unlock()
		return err
	}

	ops, err := toolset.New(d.cfg, transport)
	if err != nil {
		cancel()
		_ = transport.Close()
		_ = ledger.Close()
		d.unlock()
		return err
	}

	d.store = store
	d.ledger = ledger
	d.sessions = sessions
	d.transport = transport
	d.gateway = gateway.New(runCtx, d.cfg, sessions, store, ops, transport, ledger, d.logger)
	d.sweeper = artifacts.NewSweeper(store, d.cfg.SweepInterval(), d.cfg.TempMaxAge(), d.logger)

	transport.Serve()
	go d.sweeper.Run(runCtx)

	d.started = true
	d.logger.Info("daemon started",
		slog.String("transport_socket", d.cfg.Paths.TransportSocket),
		slog.String("control_socket", d.cfg.Paths.ControlSocket),
		slog.Int("pid", os.Getpid()))
	return nil
}

// Close stops components in reverse order and releases the lock.
func (d *Daemon) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started {
		d.unlock()
		return nil
	}
	d.started = false
	d.cancel()

	var firstErr error
	if err := d.transport.Close(); err != nil {
		firstErr = err
	}
	d.gateway.Wait()
	if err := d.ledger.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	d.unlock()
	d.logger.Info("daemon stopped")
	return firstErr
}

func (d *Daemon) unlock() {
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release lock failed", logging.Error(err))
	}
}

func (d *Daemon) handleEvent(event messaging.Event) {
	d.mu.Lock()
	gw := d.gateway
	d.mu.Unlock()
	if gw == nil {
		return
	}
	gw.HandleEvent(event)
}
