// Package message provides the stateless constructors for the timestamped
// records relayed between clients. Field names follow the wire format the
// web client renders.
package message

import (
	"fmt"
	"time"
)

// Text is a chat message attributed to a sender.
type Text struct {
	Username  string `json:"username"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

// Location points at a sender's position through a maps link.
type Location struct {
	Username  string `json:"username"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"createdAt"`
}

// NewText stamps a chat message with the current time in milliseconds since
// the Unix epoch.
func NewText(sender, text string) Text {
	return Text{
		Username:  sender,
		Text:      text,
		CreatedAt: time.Now().UnixMilli(),
	}
}

// NewLocation builds a Google Maps link for the given coordinates.
func NewLocation(sender string, latitude, longitude float64) Location {
	return Location{
		Username:  sender,
		URL:       fmt.Sprintf("https://google.com/maps/?q=%v,%v", latitude, longitude),
		CreatedAt: time.Now().UnixMilli(),
	}
}
