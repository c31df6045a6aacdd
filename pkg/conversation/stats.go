package conversation

// Stats aggregates message counts for a conversation.
type Stats struct {
	// Messages is the total number of messages.
	Messages int `json:"messages"`

	// Days is the number of distinct date tokens.
	Days int `json:"days"`

	// Multiline is the number of messages whose body spans several lines.
	Multiline int `json:"multiline"`

	// Senders holds per-sender counts in order of first appearance.
	Senders []SenderStats `json:"senders"`
}

// SenderStats is the message count for one sender.
type SenderStats struct {
	Name     string `json:"name"`
	Messages int    `json:"messages"`
	Self     bool   `json:"self,omitempty"`
}

// Stats computes aggregate statistics.
func (c *Conversation) Stats() Stats {
	s := Stats{Messages: len(c.messages)}

	days := make(map[string]struct{})
	pos := make(map[string]int)
	for _, m := range c.messages {
		days[m.Date] = struct{}{}
		if m.IsMultiline() {
			s.Multiline++
		}

		i, ok := pos[m.Sender]
		if !ok {
			i = len(s.Senders)
			pos[m.Sender] = i
			s.Senders = append(s.Senders, SenderStats{Name: m.Sender, Self: m.Sender == c.Self})
		}
		s.Senders[i].Messages++
	}
	s.Days = len(days)

	return s
}
