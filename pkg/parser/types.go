// Package parser turns a chat export into an ordered list of messages.
package parser

// Message is one logical chat message recovered from an export.
type Message struct {
	// Index is the 0-based position of the message in parse order.
	Index int `json:"index"`

	// Date is the date token exactly as it appeared in the header.
	Date string `json:"date"`

	// Time is the time-of-day token, including any meridiem marker.
	Time string `json:"time"`

	// Sender is the display name from the header.
	Sender string `json:"sender"`

	// Content is the message body. Continuation lines are joined with "\n".
	Content string `json:"content"`
}

// IsMultiline reports whether the message body spans more than one line.
func (m Message) IsMultiline() bool {
	for i := 0; i < len(m.Content); i++ {
		if m.Content[i] == '\n' {
			return true
		}
	}
	return false
}

// LineKind classifies a physical line of an export.
type LineKind string

const (
	// LineHeader starts a new message.
	LineHeader LineKind = "header"

	// LineContinuation extends the most recent message.
	LineContinuation LineKind = "continuation"

	// LineNoise is dropped: blank, or seen before any header.
	LineNoise LineKind = "noise"
)

// LineTrace records how a single physical line was handled.
type LineTrace struct {
	// LineNum is the 1-based physical line number.
	LineNum int

	// Kind is the classification of the line.
	Kind LineKind

	// Raw is the line text without its line ending.
	Raw string

	// Index is the message the line created or extended, or -1 for noise.
	Index int
}
