package output

import (
	"testing"
	"time"

	"github.com/ccollicutt/chatlog/pkg/conversation"
)

const testExport = `1/2/2026, 9:00 am - Alice: morning
1/2/2026, 9:01 am - Bob: hey
how are you?
2/2/2026, 8:00 am - Alice: next day
`

func createTestReport(t *testing.T) *Report {
	t.Helper()
	conv, err := conversation.FromText("chat.txt", testExport, conversation.WithID("conv-1"))
	if err != nil {
		t.Fatalf("FromText() error = %v", err)
	}
	return NewReport(conv, Metadata{
		ParsedAt:   time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC),
		Duration:   12 * time.Millisecond,
		InputBytes: len(testExport),
	})
}
