package parser

import (
	"regexp"
	"strings"
)

// headerPattern is the one header grammar chatlog understands:
//
//	<date>, <time> - <sender>: <body>
//
// The sender group excludes ':' so the first colon after the dash ends it.
// Only the meridiem letters are case-insensitive and \d is ASCII-only.
// Separator gaps also accept Unicode space separators such as U+202F before
// "pm" and U+00A0 after the comma, which strings.TrimSpace treats as space.
var headerPattern = regexp.MustCompile(
	`^(\d{1,2}/\d{1,2}/\d{2}(?:\d{2})?),` + gap + // date
		`(\d{1,2}:\d{2}(?:` + gap + `[A-Za-z]{1,2})?)` + gap + // time
		`-` + gap +
		`([^:]+):` + // sender
		`(.*)$`, // body
)

const gap = `[\s\p{Zs}]*`

// Header is the decomposed form of a header line.
type Header struct {
	Date   string
	Time   string
	Sender string
	Body   string
}

// MatchHeader reports whether line is a header line and, if so, returns
// its fields. Date is returned verbatim; the other fields are trimmed.
func MatchHeader(line string) (Header, bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return Header{}, false
	}

	return Header{
		Date:   m[1],
		Time:   strings.TrimSpace(m[2]),
		Sender: strings.TrimSpace(m[3]),
		Body:   strings.TrimSpace(m[4]),
	}, true
}
