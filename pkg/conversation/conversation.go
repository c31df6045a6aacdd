// Package conversation derives display structure from parsed chat messages:
// date groups, the "self" side, and per-sender statistics.
package conversation

import (
	"errors"
	"slices"

	"github.com/google/uuid"

	"github.com/ccollicutt/chatlog/pkg/parser"
)

// ErrNoMessages means the input was read but contained no chat messages.
// Callers should report it as "not a chat export" rather than an I/O error.
var ErrNoMessages = errors.New("no messages found; check this is a genuine chat export")

// Side is the display side of a message.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Conversation is a read-only view over the messages of one export.
type Conversation struct {
	// ID identifies this conversation, for example in the archive.
	ID string

	// Source is where the export came from (file path or upload name).
	Source string

	// Self is the sender shown on the right-hand side.
	Self string

	messages []parser.Message
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithSelf overrides the self sender. An empty name keeps the default.
func WithSelf(name string) Option {
	return func(c *Conversation) {
		if name != "" {
			c.Self = name
		}
	}
}

// WithID sets the conversation ID instead of generating one.
func WithID(id string) Option {
	return func(c *Conversation) {
		if id != "" {
			c.ID = id
		}
	}
}

// New builds a conversation over msgs. It returns ErrNoMessages when msgs
// is empty. The self sender defaults to the first sender encountered.
func New(source string, msgs []parser.Message, opts ...Option) (*Conversation, error) {
	if len(msgs) == 0 {
		return nil, ErrNoMessages
	}

	c := &Conversation{
		ID:       uuid.NewString(),
		Source:   source,
		Self:     msgs[0].Sender,
		messages: slices.Clone(msgs),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FromText parses text and builds a conversation from the result.
func FromText(source, text string, opts ...Option) (*Conversation, error) {
	return New(source, parser.Parse(text), opts...)
}

// Messages returns a copy of the messages in parse order.
func (c *Conversation) Messages() []parser.Message {
	return slices.Clone(c.messages)
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Side returns where msg is displayed.
func (c *Conversation) Side(msg parser.Message) Side {
	if msg.Sender == c.Self {
		return SideRight
	}
	return SideLeft
}
