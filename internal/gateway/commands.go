package gateway

import (
	"context"
	"log/slog"
	"strings"

	"mediagate/internal/logging"
	"mediagate/internal/messaging"
)

func (g *Gateway) handleText(ctx context.Context, logger *slog.Logger, event messaging.Event) {
	text := strings.TrimSpace(event.Text)
	if strings.HasPrefix(text, "/") {
		g.handleCommand(ctx, logger, event.UserID, text)
		return
	}
	if url := recognizedLink(text); url != "" {
		g.beginDownload(ctx, logger, event.UserID, url)
		return
	}
	if looksLikeLink(text) {
		messaging.NotifyText(ctx, g.messenger, logger, event.UserID, msgGuidance)
		return
	}
	logger.Debug("ignoring text without a supported link")
}

func (g *Gateway) handleCommand(ctx context.Context, logger *slog.Logger, userID int64, text string) {
	command, args, _ := strings.Cut(text, " ")
	args = strings.TrimSpace(args)
	switch command {
	case "/start":
		messaging.NotifyText(ctx, g.messenger, logger, userID, msgWelcome)
	case "/help":
		messaging.NotifyText(ctx, g.messenger, logger, userID, msgHelp)
	case "/cancel":
		if g.sessions.Clear(userID) {
			messaging.NotifyText(ctx, g.messenger, logger, userID, msgCancelled)
		} else {
			messaging.NotifyText(ctx, g.messenger, logger, userID, msgNothingToCancel)
		}
	case "/files":
		entries, err := g.store.ListPermanent(userID)
		if err != nil {
			logger.Warn("list storage failed", logging.Error(err))
			messaging.NotifyText(ctx, g.messenger, logger, userID, userErrorMessage(err))
			return
		}
		messaging.NotifyText(ctx, g.messenger, logger, userID, msgFilesList(entries))
	case "/delete":
		if args == "" {
			messaging.NotifyText(ctx, g.messenger, logger, userID, "Usage: /delete <name>")
			return
		}
		if err := g.store.DeletePermanent(userID, args); err != nil {
			logger.Warn("delete failed", logging.Error(err), slog.String("name", args))
			messaging.NotifyText(ctx, g.messenger, logger, userID, userErrorMessage(err))
			return
		}
		messaging.NotifyText(ctx, g.messenger, logger, userID, msgDeleted(args))
	case "/clear":
		count, err := g.store.ClearPermanent(userID)
		if err != nil {
			logger.Warn("clear failed", logging.Error(err))
			messaging.NotifyText(ctx, g.messenger, logger, userID, userErrorMessage(err))
			return
		}
		messaging.NotifyText(ctx, g.messenger, logger, userID, msgCleared(count))
	default:
		messaging.NotifyText(ctx, g.messenger, logger, userID, msgHelp)
	}
}
