package bot

import (
	"context"
	"errors"
	"time"

	"github.com/matrix-org/gomatrix"

	"tubelift/internal/logging"
)

const (
	syncRetryMin = 2 * time.Second
	syncRetryMax = time.Minute
)

// Joiner accepts room invites.
type Joiner interface {
	JoinRoom(roomIDorAlias, serverName string, content interface{}) (*gomatrix.RespJoinRoom, error)
}

// HandleMember joins rooms the bot is invited to.
func (b *Bot) HandleMember(joiner Joiner, ev *gomatrix.Event) {
	if ev == nil || ev.StateKey == nil || *ev.StateKey != b.selfID {
		return
	}
	if membership, _ := ev.Content["membership"].(string); membership != "invite" {
		return
	}
	if _, err := joiner.JoinRoom(ev.RoomID, "", nil); err != nil {
		b.logger.Warn("join room failed",
			logging.String("room", ev.RoomID),
			logging.Error(err),
			logging.String(logging.FieldEventType, "matrix_join_failed"),
		)
		return
	}
	b.logger.Info("joined room",
		logging.String("room", ev.RoomID),
		logging.String(logging.FieldEventType, "matrix_joined"),
	)
}

// Run registers the bot on client's syncer and syncs until ctx is done.
// Sync failures are retried with exponential backoff.
func (b *Bot) Run(ctx context.Context, client *gomatrix.Client) error {
	syncer, ok := client.Syncer.(*gomatrix.DefaultSyncer)
	if !ok {
		return errors.New("matrix client has no default syncer")
	}
	syncer.OnEventType("m.room.message", func(ev *gomatrix.Event) {
		b.HandleMessage(ctx, ev)
	})
	syncer.OnEventType("m.room.member", func(ev *gomatrix.Event) {
		b.HandleMember(client, ev)
	})

	go func() {
		<-ctx.Done()
		client.StopSync()
	}()

	var backoff syncBackoff
	for {
		started := time.Now()
		err := client.Sync()
		if ctx.Err() != nil {
			return nil
		}
		delay := backoff.next(time.Since(started))
		b.logger.Warn("matrix sync stopped; retrying",
			logging.Error(err),
			logging.Duration("retry_in", delay),
			logging.String(logging.FieldEventType, "matrix_sync_failed"),
			logging.String(logging.FieldErrorHint, "check homeserver_url and access_token"),
			logging.String(logging.FieldImpact, "chat commands are not received"),
		)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

// syncBackoff doubles the retry delay after each failed sync, capped at
// syncRetryMax. A sync that stayed up longer than the cap counts as healthy
// and restarts the sequence at syncRetryMin.
type syncBackoff struct {
	delay time.Duration
}

func (s *syncBackoff) next(ran time.Duration) time.Duration {
	switch {
	case s.delay == 0 || ran > syncRetryMax:
		s.delay = syncRetryMin
	default:
		s.delay *= 2
		if s.delay > syncRetryMax {
			s.delay = syncRetryMax
		}
	}
	return s.delay
}
