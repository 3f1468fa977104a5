// Package messages implements the append-only message log: persistence and
// chronological retrieval of direct and channel messages.
package messages

import "time"

// Message is a single chat message. Exactly one of ToUsername and
// ToChannelID is set: a direct message carries the recipient username, a
// channel message the channel id. The timestamp is assigned by the
// receiving endpoint, never by the client. Avatar ids are denormalized
// best-effort at construction time and stay nil when unknown.
type Message struct {
	ID           int64      `json:"id"`
	FromUsername string     `json:"fromUsername"`
	ToUsername   *string    `json:"toUsername"`
	ToChannelID  *int64     `json:"toChannelId"`
	Content      string     `json:"content"`
	Timestamp    *time.Time `json:"timestamp"`
	FromAvatar   *int       `json:"fromAvatar"`
	ToAvatar     *int       `json:"toAvatar"`
}

// IsDirect reports whether the message addresses a user rather than a
// channel.
func (m *Message) IsDirect() bool {
	return m.ToUsername != nil
}
