package conversation

import "github.com/ccollicutt/chatlog/pkg/parser"

// DateGroup is a run of consecutive messages sharing the same date token.
type DateGroup struct {
	Date     string           `json:"date"`
	Messages []parser.Message `json:"messages"`
}

// Groups splits the conversation at every change of date token. Messages
// are never reordered, so a date that reappears later starts a new group.
func (c *Conversation) Groups() []DateGroup {
	return GroupByDate(c.messages)
}

// GroupByDate groups consecutive messages by their Date field.
func GroupByDate(msgs []parser.Message) []DateGroup {
	var groups []DateGroup
	for _, m := range msgs {
		if n := len(groups); n > 0 && groups[n-1].Date == m.Date {
			groups[n-1].Messages = append(groups[n-1].Messages, m)
			continue
		}
		groups = append(groups, DateGroup{Date: m.Date, Messages: []parser.Message{m}})
	}
	return groups
}
