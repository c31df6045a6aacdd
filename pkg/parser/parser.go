package parser

import "strings"

// Parse recovers the messages contained in a chat export.
//
// A line matching the header grammar starts a new message. Any other
// non-blank line is appended to the most recent message; blank lines, and
// lines seen before the first header, are dropped. Parse never fails: input
// without a single header yields an empty, non-nil slice.
//
// Parse holds no state between calls and is safe for concurrent use.
func Parse(raw string) []Message {
	var b builder
	for _, line := range SplitLines(raw) {
		b.feed(line)
	}
	return b.finish()
}

// Trace reports how every physical line of raw is classified by Parse.
func Trace(raw string) []LineTrace {
	var b builder
	lines := SplitLines(raw)
	traces := make([]LineTrace, 0, len(lines))
	for i, line := range lines {
		kind, idx := b.feed(line)
		traces = append(traces, LineTrace{
			LineNum: i + 1,
			Kind:    kind,
			Raw:     line,
			Index:   idx,
		})
	}
	return traces
}

// builder is the continuation-line state machine shared by Parse and Trace.
// The body of the open message is kept as fragments and joined once, when
// the message is closed.
type builder struct {
	msgs  []Message
	parts []string
}

func (b *builder) feed(line string) (LineKind, int) {
	if h, ok := MatchHeader(line); ok {
		b.closeOpen()
		b.msgs = append(b.msgs, Message{
			Index:  len(b.msgs),
			Date:   h.Date,
			Time:   h.Time,
			Sender: h.Sender,
		})
		b.parts = append(b.parts[:0], h.Body)
		return LineHeader, len(b.msgs) - 1
	}

	text := strings.TrimSpace(line)
	if text == "" || len(b.msgs) == 0 {
		return LineNoise, -1
	}

	b.parts = append(b.parts, text)
	return LineContinuation, len(b.msgs) - 1
}

func (b *builder) closeOpen() {
	if len(b.msgs) == 0 {
		return
	}
	b.msgs[len(b.msgs)-1].Content = strings.Join(b.parts, "\n")
}

func (b *builder) finish() []Message {
	b.closeOpen()
	if b.msgs == nil {
		return []Message{}
	}
	return b.msgs
}
