// Package output renders parsed conversations for people and programs.
package output

import (
	"time"

	"github.com/ccollicutt/chatlog/pkg/conversation"
)

// Report is the complete output for one export.
type Report struct {
	// Summary provides headline counts.
	Summary Summary `json:"summary"`

	// Conversation is the grouped message view. Nil when nothing was found.
	Conversation *ConversationView `json:"conversation,omitempty"`

	// Stats holds per-sender counts. Nil when nothing was found.
	Stats *conversation.Stats `json:"stats,omitempty"`

	// Metadata provides context about the parse run.
	Metadata Metadata `json:"metadata"`
}

// Summary provides headline counts.
type Summary struct {
	Source   string `json:"source"`
	Messages int    `json:"messages"`
	Senders  int    `json:"senders"`
	Days     int    `json:"days"`
}

// Metadata provides context about the parse run.
type Metadata struct {
	// ParsedAt is when the export was parsed.
	ParsedAt time.Time `json:"parsed_at"`

	// Duration is how long reading and parsing took.
	Duration time.Duration `json:"duration"`

	// InputBytes is the size of the decoded export text.
	InputBytes int `json:"input_bytes"`
}

// ConversationView is a conversation laid out for display.
type ConversationView struct {
	ID     string      `json:"id"`
	Source string      `json:"source"`
	Self   string      `json:"self"`
	Groups []GroupView `json:"groups"`
}

// GroupView is the messages of one date separator.
type GroupView struct {
	Date     string        `json:"date"`
	Messages []MessageView `json:"messages"`
}

// MessageView is a single message with its display side.
type MessageView struct {
	Index   int               `json:"index"`
	Time    string            `json:"time"`
	Sender  string            `json:"sender"`
	Content string            `json:"content"`
	Side    conversation.Side `json:"side"`
}

// NewReport builds a report for a conversation.
func NewReport(conv *conversation.Conversation, meta Metadata) *Report {
	stats := conv.Stats()

	view := &ConversationView{
		ID:     conv.ID,
		Source: conv.Source,
		Self:   conv.Self,
	}
	for _, g := range conv.Groups() {
		gv := GroupView{Date: g.Date, Messages: make([]MessageView, 0, len(g.Messages))}
		for _, m := range g.Messages {
			gv.Messages = append(gv.Messages, MessageView{
				Index:   m.Index,
				Time:    m.Time,
				Sender:  m.Sender,
				Content: m.Content,
				Side:    conv.Side(m),
			})
		}
		view.Groups = append(view.Groups, gv)
	}

	return &Report{
		Summary: Summary{
			Source:   conv.Source,
			Messages: stats.Messages,
			Senders:  len(stats.Senders),
			Days:     stats.Days,
		},
		Conversation: view,
		Stats:        &stats,
		Metadata:     meta,
	}
}

// NewEmptyReport builds a report for an export that yielded no messages.
func NewEmptyReport(source string, meta Metadata) *Report {
	return &Report{
		Summary:  Summary{Source: source},
		Metadata: meta,
	}
}

// HasMessages returns true if the export contained any messages.
func (r *Report) HasMessages() bool {
	return r.Summary.Messages > 0
}
