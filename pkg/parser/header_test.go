package parser

import "testing"

func TestMatchHeader(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   Header
		wantOK bool
	}{
		{
			name:   "12-hour with space",
			line:   "1/2/2026, 10:45 pm - Alice: hello",
			want:   Header{Date: "1/2/2026", Time: "10:45 pm", Sender: "Alice", Body: "hello"},
			wantOK: true,
		},
		{
			name:   "12-hour without space",
			line:   "1/2/2026, 9:00am - Alice: hi",
			want:   Header{Date: "1/2/2026", Time: "9:00am", Sender: "Alice", Body: "hi"},
			wantOK: true,
		},
		{
			name:   "single letter meridiem",
			line:   "1/2/2026, 9:00 p - Alice: hi",
			want:   Header{Date: "1/2/2026", Time: "9:00 p", Sender: "Alice", Body: "hi"},
			wantOK: true,
		},
		{
			name:   "first colon ends sender",
			line:   "1/2/2026, 9:00 - Alice: a: b: c",
			want:   Header{Date: "1/2/2026", Time: "9:00", Sender: "Alice", Body: "a: b: c"},
			wantOK: true,
		},
		{
			name:   "body whitespace trimmed",
			line:   "1/2/2026, 9:00 - Alice:    spaced   ",
			want:   Header{Date: "1/2/2026", Time: "9:00", Sender: "Alice", Body: "spaced"},
			wantOK: true,
		},
		{
			name:   "whitespace around separators",
			line:   "1/2/2026,   9:00   -   Alice: hi",
			want:   Header{Date: "1/2/2026", Time: "9:00", Sender: "Alice", Body: "hi"},
			wantOK: true,
		},
		{
			name:   "unicode sender",
			line:   "1/2/2026, 9:00 - Zoë 🌸: hi",
			want:   Header{Date: "1/2/2026", Time: "9:00", Sender: "Zoë 🌸", Body: "hi"},
			wantOK: true,
		},
		{
			name:   "narrow no-break space before meridiem",
			line:   "1/2/2026, 9:00\u202fpm - Alice: hi",
			want:   Header{Date: "1/2/2026", Time: "9:00\u202fpm", Sender: "Alice", Body: "hi"},
			wantOK: true,
		},
		{
			name:   "no-break space after comma",
			line:   "1/2/2026,\u00a09:00 - Alice: hi",
			want:   Header{Date: "1/2/2026", Time: "9:00", Sender: "Alice", Body: "hi"},
			wantOK: true,
		},
		{
			name:   "no-break spaces around dash",
			line:   "1/2/2026, 9:00\u00a0-\u00a0Alice: hi",
			want:   Header{Date: "1/2/2026", Time: "9:00", Sender: "Alice", Body: "hi"},
			wantOK: true,
		},
		{name: "empty", line: ""},
		{name: "plain text", line: "hello there"},
		{name: "one-digit minutes", line: "1/2/2026, 9:0 - Alice: hi"},
		{name: "three-digit day", line: "123/2/2026, 9:00 - Alice: hi"},
		{name: "semicolon instead of comma", line: "1/2/2026; 9:00 - Alice: hi"},
		{name: "en dash delimiter", line: "1/2/2026, 9:00 – Alice: hi"},
		{name: "non-ascii digits", line: "١/٢/٢٠٢٦, ٩:٠٠ - Alice: hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchHeader(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("MatchHeader(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("MatchHeader(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}
