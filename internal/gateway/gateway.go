package gateway

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"mediagate/internal/artifacts"
	"mediagate/internal/config"
	"mediagate/internal/history"
	"mediagate/internal/logging"
	"mediagate/internal/media"
	"mediagate/internal/messaging"
	"mediagate/internal/session"
)

// Gateway dispatches inbound events into the upload and download flows.
type Gateway struct {
	cfg       *config.Config
	sessions  *session.Store
	store     *artifacts.Store
	ops       media.Operations
	messenger messaging.Messenger
	ledger    *history.Store
	logger    *slog.Logger

	ctx context.Context
	wg  sync.WaitGroup
}

// New wires a gateway. The ledger may be nil, which disables history.
func New(
	ctx context.Context,
	cfg *config.Config,
	sessions *session.Store,
	store *artifacts.Store,
	ops media.Operations,
	messenger messaging.Messenger,
	ledger *history.Store,
	logger *slog.Logger,
) *Gateway {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Gateway{
		cfg:       cfg,
		sessions:  sessions,
		store:     store,
		ops:       ops,
		messenger: messenger,
		ledger:    ledger,
		logger:    logging.WithComponent(logger, "dispatcher"),
		ctx:       ctx,
	}
}

// Sessions exposes the session store for the control surface.
func (g *Gateway) Sessions() *session.Store { return g.sessions }

// HandleEvent runs one inbound event on its own goroutine. A panic in a
// flow is contained to that event.
func (g *Gateway) HandleEvent(event messaging.Event) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				g.logger.Error("event handler panic",
					slog.Any("panic", r),
					slog.String(logging.FieldEventID, event.ID),
					slog.Int64(logging.FieldUserID, event.UserID),
					slog.String("stack", string(debug.Stack())))
				messaging.NotifyText(g.ctx, g.messenger, g.logger, event.UserID, msgInternalError)
			}
		}()
		g.route(g.ctx, event)
	}()
}

// Wait blocks until every in-flight event handler has returned.
func (g *Gateway) Wait() {
	g.wg.Wait()
}

func (g *Gateway) route(ctx context.Context, event messaging.Event) {
	logger := g.logger.With(
		slog.String(logging.FieldEventID, event.ID),
		slog.Int64(logging.FieldUserID, event.UserID),
	)
	switch event.Kind {
	case messaging.EventFileUpload:
		g.beginUpload(ctx, logger, event)
	case messaging.EventText:
		g.handleText(ctx, logger, event)
	case messaging.EventButton:
		g.handleButton(ctx, logger, event)
	default:
		logger.Warn("unknown event kind", slog.String("kind", string(event.Kind)))
	}
}

func (g *Gateway) handleButton(ctx context.Context, logger *slog.Logger, event messaging.Event) {
	press := decodeButton(event.ButtonCode)
	switch press.kind {
	case buttonUnknown:
		logger.Warn("unknown button code", slog.String("code", press.code))
		messaging.NotifyText(ctx, g.messenger, logger, event.UserID, msgStateExpired)
	case buttonDownloadVideo, buttonDownloadAudio, buttonDownloadCancel:
		g.handleDownloadButton(ctx, logger, event.UserID, press)
	default:
		g.handleUploadButton(ctx, logger, event.UserID, press)
	}
}

// discardPaths securely reclaims scratch files a finished or abandoned
// flow no longer needs.
func (g *Gateway) discardPaths(logger *slog.Logger, paths []string) {
	for _, path := range paths {
		if err := g.store.Discard(path); err != nil {
			logger.Warn("temp discard failed", logging.Error(err), slog.String("path", path))
		}
	}
}

// record appends a terminal outcome to the ledger; ledger errors are an
// operator concern, never a user-facing one.
func (g *Gateway) record(ctx context.Context, rec history.Record) {
	if g.ledger == nil {
		return
	}
	if _, err := g.ledger.Append(ctx, rec); err != nil {
		g.logger.Warn("history append failed", logging.Error(err))
	}
}

func durationMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
