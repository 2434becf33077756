package gateway

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"mediagate/internal/fileutil"
	"mediagate/internal/history"
	"mediagate/internal/logging"
	"mediagate/internal/media"
	"mediagate/internal/messaging"
	"mediagate/internal/session"
	"mediagate/internal/textutil"
)

func (g *Gateway) beginDownload(ctx context.Context, logger *slog.Logger, userID int64, url string) {
	logger = logger.With(slog.String(logging.FieldFlow, "download"))
	promptID, err := g.messenger.SendText(ctx, userID, msgFetchingInfo)
	if err != nil {
		logger.Warn("progress message dropped", logging.Error(err))
		promptID = ""
	}

	info, err := g.ops.FetchRemoteInfo(ctx, url)
	if err != nil {
		logger.Warn("info fetch failed", logging.Error(err), slog.String("url", url))
		g.replaceOrNotify(ctx, logger, userID, promptID, userErrorMessage(err))
		return
	}

	g.sessions.SetPendingDownload(userID, session.PendingDownload{
		Stage: session.DownloadFormatPending,
		URL:   url,
		Info:  info,
	})
	logger.Info("download offered", slog.String("title", info.Title))

	g.replaceOrNotify(ctx, logger, userID, promptID, msgRemoteInfo(info, g.cfg.Limits.MaxTitleLength))
	if err := g.messenger.SendOptions(ctx, userID, msgChooseFormat, downloadOptions(g.cfg)); err != nil {
		logger.Warn("format prompt failed", logging.Error(err))
	}
}

// replaceOrNotify rewrites the earlier progress message in place when the
// transport supports it, otherwise sends a fresh one.
func (g *Gateway) replaceOrNotify(ctx context.Context, logger *slog.Logger, userID int64, messageID, text string) {
	if messageID != "" {
		err := g.messenger.EditText(ctx, userID, messageID, text)
		if err == nil {
			return
		}
		logger.Warn("message edit failed", logging.Error(err))
	}
	messaging.NotifyText(ctx, g.messenger, logger, userID, text)
}

func (g *Gateway) handleDownloadButton(ctx context.Context, logger *slog.Logger, userID int64, press buttonPress) {
	logger = logger.With(slog.String(logging.FieldFlow, "download"))

	if press.kind == buttonDownloadCancel {
		if g.sessions.Clear(userID) {
			messaging.NotifyText(ctx, g.messenger, logger, userID, msgCancelled)
		} else {
			messaging.NotifyText(ctx, g.messenger, logger, userID, msgStateExpired)
		}
		return
	}

	kind := media.RemoteVideo
	maxHeight := 0
	if press.kind == buttonDownloadAudio {
		kind = media.RemoteAudio
	} else {
		tier, ok := g.cfg.DownloadTierByKey(press.key)
		if !ok {
			messaging.NotifyText(ctx, g.messenger, logger, userID, msgStateExpired)
			return
		}
		maxHeight = tier.MaxHeight
	}

	pending, err := g.sessions.MutateDownload(userID, "", func(p *session.PendingDownload) error {
		if p.Stage != session.DownloadFormatPending {
			return session.ErrStateExpired
		}
		p.Stage = session.DownloadFetching
		p.Format = press.code
		return nil
	})
	if err != nil {
		messaging.NotifyText(ctx, g.messenger, logger, userID, userErrorMessage(err))
		return
	}
	g.processDownload(ctx, logger, userID, pending, kind, maxHeight)
}

// processDownload fetches the remote payload and delivers it. As with
// uploads, the slot lock is only taken for the commit brackets.
func (g *Gateway) processDownload(
	ctx context.Context,
	logger *slog.Logger,
	userID int64,
	pending session.PendingDownload,
	kind media.RemoteKind,
	maxHeight int,
) {
	start := time.Now()
	messaging.NotifyText(ctx, g.messenger, logger, userID, msgDownloading)

	destDir, err := g.store.NewTempDir(userID)
	if err != nil {
		logger.Warn("temp dir failed", logging.Error(err))
		if _, owns := g.sessions.ClearIfOwner(userID, pending.Token); owns {
			messaging.NotifyText(ctx, g.messenger, logger, userID, userErrorMessage(err))
		}
		return
	}
	defer func() {
		if err := g.store.Discard(destDir); err != nil {
			logger.Warn("temp discard failed", logging.Error(err), slog.String("path", destDir))
		}
	}()

	if _, err := g.sessions.MutateDownload(userID, pending.Token, func(p *session.PendingDownload) error {
		p.TempPaths = append(p.TempPaths, destDir)
		return nil
	}); err != nil {
		// Superseded before the fetch even started.
		return
	}

	fail := func(err error) {
		logger.Warn("download flow failed", logging.Error(err))
		orphans, owns := g.sessions.ClearIfOwner(userID, pending.Token)
		if !owns {
			return
		}
		g.discardPaths(logger, orphans)
		messaging.NotifyText(ctx, g.messenger, logger, userID, userErrorMessage(err))
		g.record(ctx, history.Record{
			UserID:     userID,
			Flow:       history.FlowDownload,
			Action:     pending.Format,
			Subject:    pending.URL,
			Outcome:    history.OutcomeFailed,
			Detail:     textutil.Truncate(err.Error(), userErrorCap),
			DurationMS: durationMS(start),
		})
	}

	localPath, fetched, err := g.ops.FetchRemoteMedia(ctx, pending.URL, kind, maxHeight, destDir)
	if err != nil {
		fail(err)
		return
	}

	size, err := fileutil.FileSize(localPath)
	if err != nil {
		fail(err)
		return
	}
	if size > g.cfg.DeliveryCapBytes() {
		if orphans, owns := g.sessions.ClearIfOwner(userID, pending.Token); owns {
			g.discardPaths(logger, orphans)
			messaging.NotifyText(ctx, g.messenger, logger, userID, msgResultTooLarge(size, g.cfg.DeliveryCapBytes()))
			g.record(ctx, history.Record{
				UserID:     userID,
				Flow:       history.FlowDownload,
				Action:     pending.Format,
				Subject:    pending.URL,
				Outcome:    history.OutcomeFailed,
				Detail:     "result over delivery cap",
				DurationMS: durationMS(start),
			})
		}
		return
	}

	orphans, owns := g.sessions.ClearIfOwner(userID, pending.Token)
	if !owns {
		logger.Info("result discarded, session superseded")
		return
	}
	// The download directory holds the file about to be sent; reclaim it
	// only after the connector is done reading.
	defer g.discardPaths(logger, orphans)

	caption := fetched.Title
	if caption == "" {
		caption = pending.Info.Title
	}
	if caption == "" {
		caption = filepath.Base(localPath)
	}
	caption = textutil.Truncate(caption, g.cfg.Limits.MaxTitleLength)

	if kind == media.RemoteAudio {
		err = g.messenger.SendAudio(ctx, userID, localPath, caption)
	} else {
		err = g.messenger.SendVideo(ctx, userID, localPath, caption)
	}
	if err != nil {
		logger.Warn("delivery failed", logging.Error(err))
		messaging.NotifyText(ctx, g.messenger, logger, userID, userErrorMessage(err))
		g.record(ctx, history.Record{
			UserID:     userID,
			Flow:       history.FlowDownload,
			Action:     pending.Format,
			Subject:    pending.URL,
			Outcome:    history.OutcomeFailed,
			Detail:     textutil.Truncate(err.Error(), userErrorCap),
			DurationMS: durationMS(start),
		})
		return
	}
	g.record(ctx, history.Record{
		UserID:     userID,
		Flow:       history.FlowDownload,
		Action:     pending.Format,
		Subject:    pending.URL,
		Outcome:    history.OutcomeDone,
		DurationMS: durationMS(start),
	})
	logger.Info("download delivered", slog.Int64("size", size))
}
