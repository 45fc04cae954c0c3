package shell

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oshokin/electron-release/internal/logger"
	"github.com/oshokin/electron-release/internal/platform"
)

// RequestChannels are the channels a window sends requests on.
var RequestChannels = []string{ChannelAppVersion, ChannelRestartApp}

// EmitFunc publishes a named event with optional data to window content.
// It has the shape of the webview runtime's EventsEmit.
type EmitFunc func(ctx context.Context, event string, data ...any)

// EventWindow is a window whose content receives messages as named events
// instead of JSON frames on a connection.
type EventWindow struct {
	id string
	//nolint:containedctx // Runtime context of the native window, required by emit.
	ctx  context.Context
	emit EmitFunc
}

// NewEventWindow creates a window that delivers messages through emit using
// the runtime context ctx.
func NewEventWindow(ctx context.Context, id string, emit EmitFunc) *EventWindow {
	return &EventWindow{
		id:   id,
		ctx:  ctx,
		emit: emit,
	}
}

// ID implements Window.
func (w *EventWindow) ID() string {
	return w.id
}

// Send implements Window. The channel becomes the event name and the payload,
// if any, its single argument.
func (w *EventWindow) Send(_ context.Context, msg Message) error {
	if len(msg.Payload) == 0 {
		w.emit(w.ctx, msg.Channel)
		return nil
	}

	var data any
	if err := json.Unmarshal(msg.Payload, &data); err != nil {
		return fmt.Errorf("decode %s payload: %w", msg.Channel, err)
	}

	w.emit(w.ctx, msg.Channel, data)

	return nil
}

// Listener returns an event callback serving requests on channel for w.
// Event data is ignored: neither request carries a payload.
func (b *Bridge) Listener(ctx context.Context, w Window, channel string) func(data ...any) {
	return func(...any) {
		if err := b.Handle(ctx, w, Message{Channel: channel}); err != nil {
			logger.ErrorKV(ctx, "Request failed", "window", w.ID(), "channel", channel, "error", err)
		}
	}
}

// BeforeClose unregisters w when its native window is about to close and
// reports whether the close must be prevented, hiding the window instead.
// That is the case for the last window on macOS, where the app stays alive.
func (b *Bridge) BeforeClose(ctx context.Context, w Window) bool {
	b.Close(ctx, w)

	return b.platform == platform.Mac && b.Windows() == 0
}
