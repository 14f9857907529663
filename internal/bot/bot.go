package bot

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/matrix-org/gomatrix"

	"tubelift/internal/logging"
	"tubelift/internal/queue"
	"tubelift/internal/services"
	"tubelift/internal/workflow"
)

// Commands is the command surface the bot drives.
type Commands interface {
	Submit(ctx context.Context, submitter, url string) queue.Job
	Status(submitter string) queue.Status
	Cancel(ctx context.Context, submitter string) int
}

// Replier sends plain text into a room.
type Replier interface {
	SendText(roomID, text string) (*gomatrix.RespSendEvent, error)
}

// Bot answers chat commands.
type Bot struct {
	commands Commands
	replier  Replier
	selfID   string
	since    int64
	logger   *slog.Logger
}

// New builds a bot. Messages sent by selfID, or older than the moment New is
// called, are ignored so the initial sync does not replay history.
func New(commands Commands, replier Replier, selfID string, logger *slog.Logger) *Bot {
	return &Bot{
		commands: commands,
		replier:  replier,
		selfID:   selfID,
		since:    time.Now().UnixMilli(),
		logger:   logging.NewComponentLogger(logger, "bot"),
	}
}

// Dispatch runs one command for submitter and returns the reply text.
func (b *Bot) Dispatch(ctx context.Context, submitter, text string) string {
	text = strings.TrimSpace(text)
	command := ""
	if fields := strings.Fields(text); len(fields) > 0 {
		command = strings.ToLower(fields[0])
	}
	switch command {
	case "!start", "/start", "!help", "/help":
		return workflow.WelcomeMessage
	case "!status", "/status":
		return workflow.StatusMessage(b.commands.Status(submitter))
	case "!cancel", "/cancel":
		return workflow.CancelMessage(b.commands.Cancel(ctx, submitter))
	}
	if workflow.LooksLikeURL(text) && len(strings.Fields(text)) == 1 {
		b.commands.Submit(ctx, submitter, text)
		return workflow.QueuedMessage
	}
	return workflow.InvalidSubmitMessage
}

// HandleMessage processes one m.room.message event.
func (b *Bot) HandleMessage(ctx context.Context, ev *gomatrix.Event) {
	if ev == nil || ev.Sender == b.selfID || ev.Timestamp < b.since {
		return
	}
	if msgType, _ := ev.MessageType(); msgType != "m.text" {
		return
	}
	if isEdit(ev) {
		return
	}
	body, ok := ev.Body()
	if !ok {
		return
	}

	ctx = services.WithSubmitter(ctx, ev.RoomID)
	logger := logging.WithContext(ctx, b.logger)
	logger.Debug("chat command received",
		logging.String("sender", ev.Sender),
		logging.String(logging.FieldEventType, "chat_command"),
	)

	reply := b.Dispatch(ctx, ev.RoomID, body)
	if _, err := b.replier.SendText(ev.RoomID, reply); err != nil {
		logging.WarnWithContext(logger, "chat reply failed", "chat_reply_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "user did not receive the command reply"),
		)
	}
}

// isEdit reports whether ev replaces an earlier message.
func isEdit(ev *gomatrix.Event) bool {
	relates, ok := ev.Content["m.relates_to"].(map[string]interface{})
	if !ok {
		return false
	}
	relType, _ := relates["rel_type"].(string)
	return relType == "m.replace"
}
