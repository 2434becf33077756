package gateway

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"mediagate/internal/fileutil"
	"mediagate/internal/history"
	"mediagate/internal/logging"
	"mediagate/internal/messaging"
	"mediagate/internal/session"
	"mediagate/internal/textutil"
)

func (g *Gateway) beginUpload(ctx context.Context, logger *slog.Logger, event messaging.Event) {
	if event.File == nil {
		logger.Warn("file event without attachment")
		return
	}
	file := event.File
	ext := strings.ToLower(filepath.Ext(file.Name))

	// Invalid input never creates session state.
	if !g.cfg.IsSupportedExtension(ext) {
		messaging.NotifyText(ctx, g.messenger, logger, event.UserID,
			msgUnsupportedFormat(ext, g.cfg.SupportedExtensions()))
		return
	}
	if file.SizeBytes > g.cfg.MaxUploadBytes() {
		messaging.NotifyText(ctx, g.messenger, logger, event.UserID,
			msgFileTooBig(file.SizeBytes, g.cfg.MaxUploadBytes()))
		return
	}

	pending := g.sessions.SetPendingUpload(event.UserID, session.PendingUpload{
		Stage:      session.UploadRightsPending,
		FileHandle: file.Handle,
		FileName:   file.Name,
		Extension:  ext,
		SizeBytes:  file.SizeBytes,
	})
	logger.Info("upload received",
		slog.String(logging.FieldFlow, "upload"),
		slog.String("file", pending.FileName),
		slog.Int64("size", pending.SizeBytes))

	rights := []messaging.Option{
		{Code: codeRightsConfirm, Label: "Yes, I have the rights"},
		{Code: codeRightsCancel, Label: "No, cancel"},
	}
	if err := g.messenger.SendOptions(ctx, event.UserID, msgRightsPrompt(pending.FileName), rights); err != nil {
		logger.Warn("rights prompt failed", logging.Error(err))
	}
}

func (g *Gateway) handleUploadButton(ctx context.Context, logger *slog.Logger, userID int64, press buttonPress) {
	switch press.kind {
	case buttonRightsCancel, buttonUploadCancel, buttonQualityCancel:
		if g.sessions.Clear(userID) {
			messaging.NotifyText(ctx, g.messenger, logger, userID, msgCancelled)
		} else {
			messaging.NotifyText(ctx, g.messenger, logger, userID, msgStateExpired)
		}
	case buttonRightsConfirm:
		g.confirmRights(ctx, logger, userID)
	case buttonActionImmediate:
		g.startImmediateAction(ctx, logger, userID, press.code)
	case buttonActionQuality:
		g.startQualityAction(ctx, logger, userID, press.code)
	case buttonAudioQuality:
		g.chooseQuality(ctx, logger, userID, press.key, false)
	case buttonVideoQuality:
		g.chooseQuality(ctx, logger, userID, press.key, true)
	}
}

func (g *Gateway) confirmRights(ctx context.Context, logger *slog.Logger, userID int64) {
	pending, err := g.sessions.MutateUpload(userID, "", func(p *session.PendingUpload) error {
		if p.Stage != session.UploadRightsPending {
			return session.ErrStateExpired
		}
		p.Stage = session.UploadActionPending
		return nil
	})
	if err != nil {
		messaging.NotifyText(ctx, g.messenger, logger, userID, userErrorMessage(err))
		return
	}
	if err := g.messenger.SendOptions(ctx, userID, msgActionPrompt(pending.FileName), actionsFor(g.cfg, pending.Extension)); err != nil {
		logger.Warn("action prompt failed", logging.Error(err))
	}
}

func (g *Gateway) startImmediateAction(ctx context.Context, logger *slog.Logger, userID int64, code string) {
	pending, err := g.sessions.MutateUpload(userID, "", func(p *session.PendingUpload) error {
		if p.Stage != session.UploadActionPending {
			return session.ErrStateExpired
		}
		p.Stage = session.UploadProcessing
		p.Action = code
		return nil
	})
	if err != nil {
		messaging.NotifyText(ctx, g.messenger, logger, userID, userErrorMessage(err))
		return
	}
	g.processUpload(ctx, logger, userID, pending)
}

func (g *Gateway) startQualityAction(ctx context.Context, logger *slog.Logger, userID int64, code string) {
	pending, err := g.sessions.MutateUpload(userID, "", func(p *session.PendingUpload) error {
		if p.Stage != session.UploadActionPending {
			return session.ErrStateExpired
		}
		p.Stage = session.UploadQualityPending
		p.Action = code
		return nil
	})
	if err != nil {
		messaging.NotifyText(ctx, g.messenger, logger, userID, userErrorMessage(err))
		return
	}

	var options []messaging.Option
	switch {
	case needsVideoQuality(pending.Action):
		options = videoQualityOptions(g.cfg)
	case needsAudioQuality(pending.Action):
		options = audioQualityOptions(g.cfg)
	}
	if err := g.messenger.SendOptions(ctx, userID, msgQualityPrompt, options); err != nil {
		logger.Warn("quality prompt failed", logging.Error(err))
	}
}

func (g *Gateway) chooseQuality(ctx context.Context, logger *slog.Logger, userID int64, key string, video bool) {
	pending, err := g.sessions.MutateUpload(userID, "", func(p *session.PendingUpload) error {
		if p.Stage != session.UploadQualityPending {
			return session.ErrStateExpired
		}
		if video != needsVideoQuality(p.Action) {
			return session.ErrStateExpired
		}
		if video {
			if _, ok := g.cfg.VideoPresetByKey(key); !ok {
				return session.ErrStateExpired
			}
		} else {
			if _, ok := g.cfg.AudioPresetByKey(key); !ok {
				return session.ErrStateExpired
			}
		}
		p.Stage = session.UploadProcessing
		p.Quality = key
		return nil
	})
	if err != nil {
		messaging.NotifyText(ctx, g.messenger, logger, userID, userErrorMessage(err))
		return
	}
	g.processUpload(ctx, logger, userID, pending)
}

// processUpload executes the chosen action. The per-user lock is not held
// here; tool runs and transfers happen against a private copy, and the
// terminal transition commits only if the ownership token still holds.
func (g *Gateway) processUpload(ctx context.Context, logger *slog.Logger, userID int64, pending session.PendingUpload) {
	start := time.Now()
	logger = logger.With(
		slog.String(logging.FieldFlow, "upload"),
		slog.String("action", pending.Action),
	)
	messaging.NotifyText(ctx, g.messenger, logger, userID, msgProcessing)

	var temps []string
	defer func() { g.discardPaths(logger, temps) }()

	addTemp := func(path string) bool {
		temps = append(temps, path)
		_, err := g.sessions.MutateUpload(userID, pending.Token, func(p *session.PendingUpload) error {
			p.TempPaths = append(p.TempPaths, path)
			return nil
		})
		// A failed registration means the slot was superseded; stop
		// quietly, the deferred discard still reclaims the file.
		return err == nil
	}

	fail := func(err error) {
		logger.Warn("upload flow failed", logging.Error(err))
		orphans, owns := g.sessions.ClearIfOwner(userID, pending.Token)
		if !owns {
			return
		}
		g.discardPaths(logger, orphans)
		messaging.NotifyText(ctx, g.messenger, logger, userID, userErrorMessage(err))
		g.record(ctx, history.Record{
			UserID:     userID,
			Flow:       history.FlowUpload,
			Action:     pending.Action,
			Subject:    pending.FileName,
			Outcome:    history.OutcomeFailed,
			Detail:     textutil.Truncate(err.Error(), userErrorCap),
			DurationMS: durationMS(start),
		})
	}

	succeed := func(deliver func() error) {
		orphans, owns := g.sessions.ClearIfOwner(userID, pending.Token)
		if !owns {
			logger.Info("result discarded, session superseded")
			return
		}
		// The cleared record still points at the artifact being sent, so
		// reclaim only once delivery has finished with it.
		defer g.discardPaths(logger, orphans)
		if err := deliver(); err != nil {
			logger.Warn("delivery failed", logging.Error(err))
			messaging.NotifyText(ctx, g.messenger, logger, userID, userErrorMessage(err))
			g.record(ctx, history.Record{
				UserID:     userID,
				Flow:       history.FlowUpload,
				Action:     pending.Action,
				Subject:    pending.FileName,
				Outcome:    history.OutcomeFailed,
				Detail:     textutil.Truncate(err.Error(), userErrorCap),
				DurationMS: durationMS(start),
			})
			return
		}
		g.record(ctx, history.Record{
			UserID:     userID,
			Flow:       history.FlowUpload,
			Action:     pending.Action,
			Subject:    pending.FileName,
			Outcome:    history.OutcomeDone,
			DurationMS: durationMS(start),
		})
	}

	inPath, err := g.store.NewTempPath(userID, pending.Extension)
	if err != nil {
		fail(err)
		return
	}
	if !addTemp(inPath) {
		return
	}
	if err := g.ops.Retrieve(ctx, pending.FileHandle, inPath); err != nil {
		fail(err)
		return
	}

	switch pending.Action {
	case codeActMetadata:
		probe, err := g.ops.Probe(ctx, inPath)
		if err != nil {
			fail(err)
			return
		}
		succeed(func() error {
			_, err := g.messenger.SendText(ctx, userID, msgMetadataSummary(pending.FileName, probe))
			return err
		})

	case codeActSave:
		savedPath, err := g.store.SaveToPermanent(userID, inPath, pending.FileName)
		if err != nil {
			fail(err)
			return
		}
		succeed(func() error {
			_, err := g.messenger.SendText(ctx, userID, msgSaved(filepath.Base(savedPath)))
			return err
		})

	default:
		g.transcodeUpload(ctx, logger, userID, pending, inPath, addTemp, fail, succeed)
	}
}

func (g *Gateway) transcodeUpload(
	ctx context.Context,
	logger *slog.Logger,
	userID int64,
	pending session.PendingUpload,
	inPath string,
	addTemp func(string) bool,
	fail func(error),
	succeed func(func() error),
) {
	outExt := ".mp3"
	if pending.Action == codeActVideoQuality || pending.Action == codeActConvertMP4 {
		outExt = ".mp4"
	}
	outPath, err := g.store.NewTempPath(userID, outExt)
	if err != nil {
		fail(err)
		return
	}
	if !addTemp(outPath) {
		return
	}

	switch pending.Action {
	case codeActExtractAudio, codeActConvertMP3, codeActAudioQuality:
		preset, ok := g.cfg.AudioPresetByKey(pending.Quality)
		if !ok {
			fail(session.ErrStateExpired)
			return
		}
		err = g.ops.TranscodeToAudio(ctx, inPath, outPath, preset.Bitrate)
	case codeActConvertMP4:
		preset, ok := g.cfg.AudioPresetByKey(pending.Quality)
		if !ok {
			fail(session.ErrStateExpired)
			return
		}
		err = g.ops.ConvertAudioToMP4(ctx, inPath, outPath, preset.Bitrate)
	case codeActVideoQuality:
		preset, ok := g.cfg.VideoPresetByKey(pending.Quality)
		if !ok {
			fail(session.ErrStateExpired)
			return
		}
		err = g.ops.TranscodeVideo(ctx, inPath, outPath, preset.Resolution)
	default:
		logger.Error("unhandled upload action", slog.String("action", pending.Action))
		fail(session.ErrStateExpired)
		return
	}
	if err != nil {
		fail(err)
		return
	}

	size, err := fileutil.FileSize(outPath)
	if err != nil {
		fail(err)
		return
	}
	if size > g.cfg.DeliveryCapBytes() {
		if orphans, owns := g.sessions.ClearIfOwner(userID, pending.Token); owns {
			g.discardPaths(logger, orphans)
			messaging.NotifyText(ctx, g.messenger, logger, userID, msgResultTooLarge(size, g.cfg.DeliveryCapBytes()))
			g.record(ctx, history.Record{
				UserID:  userID,
				Flow:    history.FlowUpload,
				Action:  pending.Action,
				Subject: pending.FileName,
				Outcome: history.OutcomeFailed,
				Detail:  "result over delivery cap",
			})
		}
		return
	}

	resultName := resultFileName(pending.FileName, outExt)
	succeed(func() error {
		if outExt == ".mp4" {
			return g.messenger.SendVideo(ctx, userID, outPath, resultName)
		}
		return g.messenger.SendAudio(ctx, userID, outPath, resultName)
	})
}

func resultFileName(original, newExt string) string {
	stem := strings.TrimSuffix(original, filepath.Ext(original))
	if stem == "" {
		stem = "result"
	}
	return stem + newExt
}
