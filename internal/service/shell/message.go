package shell

import (
	"context"
	"encoding/json"
)

// IPC channel names.
const (
	ChannelAppVersion       = "app_version"
	ChannelRestartApp       = "restart_app"
	ChannelUpdateAvailable  = "update_available"
	ChannelDownloadProgress = "download_progress"
	ChannelUpdateDownloaded = "update_downloaded"
)

// Message is one IPC frame.
type Message struct {
	// Channel names the event or request.
	Channel string `json:"channel"`
	// Payload is the channel-specific body; absent for bare notifications.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// VersionPayload answers app_version.
type VersionPayload struct {
	Version string `json:"version"`
}

// ProgressPayload accompanies download_progress.
type ProgressPayload struct {
	Progress float64 `json:"progress"`
}

// Window is the main-process side of an open window.
type Window interface {
	// ID identifies the window for logging.
	ID() string
	// Send delivers a message to the window's content.
	Send(ctx context.Context, msg Message) error
}

// newMessage encodes payload into a Message. A nil payload produces a bare notification.
func newMessage(channel string, payload any) (Message, error) {
	msg := Message{Channel: channel}
	if payload == nil {
		return msg, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return msg, err
	}

	msg.Payload = raw

	return msg, nil
}
