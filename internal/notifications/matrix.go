package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matrix-org/gomatrix"
)

const matrixMessageEvent = "m.room.message"

// MatrixSender is the subset of *gomatrix.Client used for delivery.
type MatrixSender interface {
	SendText(roomID, text string) (*gomatrix.RespSendEvent, error)
	SendMessageEvent(roomID string, eventType string, contentJSON interface{}) (*gomatrix.RespSendEvent, error)
}

// Matrix delivers messages into Matrix rooms. The user identity passed to
// Send is the room ID the submission came from.
type Matrix struct {
	client MatrixSender
}

// NewMatrix wraps a Matrix client.
func NewMatrix(client MatrixSender) *Matrix {
	return &Matrix{client: client}
}

// Send implements Notifier.
func (m *Matrix) Send(ctx context.Context, user, text string) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return Handle{}, err
	}
	room := strings.TrimSpace(user)
	if room == "" {
		return Handle{}, errors.New("matrix send: empty room id")
	}
	resp, err := m.client.SendText(room, text)
	if err != nil {
		return Handle{}, fmt.Errorf("matrix send: %w", describeMatrixError(err))
	}
	if resp == nil || resp.EventID == "" {
		return Handle{}, errors.New("matrix send: homeserver returned no event id")
	}
	return Handle{Transport: "matrix", User: room, ID: resp.EventID}, nil
}

// Edit implements Notifier by posting an m.replace relation to the original
// event.
func (m *Matrix) Edit(ctx context.Context, handle Handle, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if handle.IsZero() {
		return errors.New("matrix edit: empty handle")
	}
	if _, err := m.client.SendMessageEvent(handle.User, matrixMessageEvent, editContent(handle.ID, text)); err != nil {
		return fmt.Errorf("matrix edit: %w", describeMatrixError(err))
	}
	return nil
}

type textContent struct {
	MsgType string `json:"msgtype"`
	Body    string `json:"body"`
}

type relatesTo struct {
	RelType string `json:"rel_type"`
	EventID string `json:"event_id"`
}

type replaceContent struct {
	MsgType    string      `json:"msgtype"`
	Body       string      `json:"body"`
	NewContent textContent `json:"m.new_content"`
	RelatesTo  relatesTo   `json:"m.relates_to"`
}

func editContent(eventID, text string) replaceContent {
	return replaceContent{
		MsgType:    "m.text",
		Body:       "* " + text,
		NewContent: textContent{MsgType: "m.text", Body: text},
		RelatesTo:  relatesTo{RelType: "m.replace", EventID: eventID},
	}
}

func describeMatrixError(err error) error {
	var httpErr gomatrix.HTTPError
	if errors.As(err, &httpErr) {
		msg := strings.TrimSpace(httpErr.Message)
		if msg == "" && len(httpErr.Contents) > 0 {
			msg = strings.TrimSpace(string(httpErr.Contents))
		}
		return fmt.Errorf("homeserver returned %d: %s: %w", httpErr.Code, msg, err)
	}
	return err
}
