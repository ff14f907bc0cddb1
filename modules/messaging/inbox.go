// Package messaging keeps the farmer inbox and the customer outbox for a
// dashboard session.
package messaging

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxHistorySize is the maximum number of messages kept per inbox.
const maxHistorySize = 100

// MsgSelectFarmer is shown when a customer message lacks a recipient or body.
const MsgSelectFarmer = "Please select a farmer and enter a message."

var (
	// ErrIncompleteMessage is returned when the recipient or body is blank.
	ErrIncompleteMessage = errors.New("recipient and message are required")
	// ErrUnknownFarm is returned when the recipient is not a listed farm.
	ErrUnknownFarm = errors.New("unknown farm")
	// ErrMessageNotFound is returned when a message index is out of range.
	ErrMessageNotFound = errors.New("message not found")
	// ErrEmptyReply is returned when a reply body is blank.
	ErrEmptyReply = errors.New("reply is required")
)

// Farms lists the recipients a customer can write to.
var Farms = []string{
	"John's Organic Farm",
	"Green Valley Farm",
	"Fresh Harvest Co.",
	"Local Farmers Market",
}

// Message is one conversation entry. Replies are appended in order.
type Message struct {
	ID      string    `json:"id"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sent_at"`
	Read    bool      `json:"read"`
	Replies []Reply   `json:"replies,omitempty"`
}

// Reply is an answer to a Message.
type Reply struct {
	From   string    `json:"from"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

// Inbox is owned by a single session and is not safe for concurrent use.
type Inbox struct {
	messages []Message
	now      func() time.Time
}

// NewInbox creates an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{
		messages: make([]Message, 0),
		now:      time.Now,
	}
}

// SampleFarmerInbox returns an inbox holding the customer enquiries shown on
// a new farmer dashboard.
func SampleFarmerInbox(farmName string, now time.Time) *Inbox {
	inbox := NewInbox()
	samples := []struct {
		from string
		body string
		age  time.Duration
		read bool
	}{
		{"John Doe", "I'm interested in your organic tomatoes. Do you have any available?", 2 * time.Hour, false},
		{"Jane Smith", "What's the minimum order quantity for your products?", 5 * time.Hour, false},
		{"Mike Johnson", "Can you deliver to Accra Central?", 24 * time.Hour, true},
		{"Sarah Wilson", "Do you offer bulk discounts?", 48 * time.Hour, true},
	}
	for _, s := range samples {
		inbox.messages = append(inbox.messages, Message{
			ID:     uuid.New().String(),
			From:   s.from,
			To:     farmName,
			Body:   s.body,
			SentAt: now.Add(-s.age),
			Read:   s.read,
		})
	}
	return inbox
}

// IsFarm reports whether name is one of Farms.
func IsFarm(name string) bool {
	for _, f := range Farms {
		if f == name {
			return true
		}
	}
	return false
}

// Send records a customer message to one of Farms.
func (i *Inbox) Send(from, to, body string) (Message, error) {
	if strings.TrimSpace(to) == "" || strings.TrimSpace(body) == "" {
		return Message{}, ErrIncompleteMessage
	}
	if !IsFarm(to) {
		return Message{}, fmt.Errorf("%w: %s", ErrUnknownFarm, to)
	}

	msg := Message{
		ID:     uuid.New().String(),
		From:   from,
		To:     to,
		Body:   body,
		SentAt: i.now(),
		Read:   true,
	}
	i.append(msg)
	return msg, nil
}

// Reply answers the message at index and marks it read.
func (i *Inbox) Reply(index int, from, body string) (Message, error) {
	if index < 0 || index >= len(i.messages) {
		return Message{}, ErrMessageNotFound
	}
	if strings.TrimSpace(body) == "" {
		return Message{}, ErrEmptyReply
	}

	msg := &i.messages[index]
	msg.Read = true
	msg.Replies = append(msg.Replies, Reply{From: from, Body: body, SentAt: i.now()})
	return *msg, nil
}

// History returns the last limit messages, or all of them when limit <= 0.
func (i *Inbox) History(limit int) []Message {
	if limit <= 0 || limit > len(i.messages) {
		limit = len(i.messages)
	}
	src := i.messages[len(i.messages)-limit:]
	result := make([]Message, len(src))
	copy(result, src)
	return result
}

// Unread counts unread messages.
func (i *Inbox) Unread() int {
	n := 0
	for _, m := range i.messages {
		if !m.Read {
			n++
		}
	}
	return n
}

func (i *Inbox) append(msg Message) {
	i.messages = append(i.messages, msg)
	if len(i.messages) > maxHistorySize {
		i.messages = i.messages[len(i.messages)-maxHistorySize:]
	}
}
