// Package detector sniffs a file to judge whether it is a chat export in
// the header format chatlog understands. It is not a general format
// detector: every line is checked against the one header grammar.
package detector

import (
	"context"
	"strings"

	"github.com/ccollicutt/chatlog/pkg/parser"
)

// DefaultSampleSize is the number of non-blank lines examined by default.
const DefaultSampleSize = 100

// MinConfidence is the header ratio at which a sample looks like an export.
const MinConfidence = 0.1

// DetectionResult holds what the sample revealed about a file.
type DetectionResult struct {
	SampledLines int     // Non-blank lines examined
	HeaderLines  int     // Lines matching the header grammar
	Confidence   float64 // HeaderLines / SampledLines

	TwelveHour     int // Headers whose time carries a meridiem marker
	TwentyFourHour int // Headers without one
	TwoDigitYear   int
	FourDigitYear  int

	DateOrder DateOrder
	Senders   []string // Distinct senders in order of first appearance

	SampleLine    string // First header line seen
	AmbiguityNote string // Warning about date ordering if applicable
}

// LooksLikeExport reports whether enough sampled lines are headers.
func (r *DetectionResult) LooksLikeExport() bool {
	return r.HeaderLines > 0 && r.Confidence >= MinConfidence
}

// HasMatch returns true if at least one header line was found.
func (r *DetectionResult) HasMatch() bool {
	return r.HeaderLines > 0
}

// Detector samples exports.
type Detector struct {
	sampleSize int
	maxBytes   int64
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithMaxBytes sets the read limit passed to parser.ReadExport.
func WithMaxBytes(n int64) Option {
	return func(d *Detector) {
		d.maxBytes = n
	}
}

// New creates a new Detector.
func New(opts ...Option) *Detector {
	d := &Detector{
		sampleSize: DefaultSampleSize,
		maxBytes:   parser.DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile reads an export and analyzes its leading lines.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	text, err := parser.ReadExport(ctx, path, d.maxBytes)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(parser.SplitLines(text)), nil
}

// DetectFromLines analyzes up to the sample size of non-blank lines.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{DateOrder: DateOrderUnknown}

	seenSender := make(map[string]bool)
	var sawDate, dayFirst, monthFirst bool

	for _, line := range lines {
		if result.SampledLines >= d.sampleSize {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		result.SampledLines++

		h, ok := parser.MatchHeader(line)
		if !ok {
			continue
		}
		result.HeaderLines++
		if result.SampleLine == "" {
			result.SampleLine = line
		}

		if hasMeridiem(h.Time) {
			result.TwelveHour++
		} else {
			result.TwentyFourHour++
		}

		first, second, yearDigits := dateFields(h.Date)
		if yearDigits == 4 {
			result.FourDigitYear++
		} else {
			result.TwoDigitYear++
		}
		sawDate = true
		if first > 12 {
			dayFirst = true
		}
		if second > 12 {
			monthFirst = true
		}

		if !seenSender[h.Sender] {
			seenSender[h.Sender] = true
			result.Senders = append(result.Senders, h.Sender)
		}
	}

	if result.SampledLines > 0 {
		result.Confidence = float64(result.HeaderLines) / float64(result.SampledLines)
	}

	result.DateOrder = resolveOrder(sawDate, dayFirst, monthFirst)
	switch result.DateOrder {
	case DateOrderAmbiguous:
		result.AmbiguityNote = "Every sampled date fits both DD/MM and MM/DD. " +
			"Dates are kept verbatim, so check the ordering before comparing them."
	case DateOrderMixed:
		result.AmbiguityNote = "Sampled dates disagree on DD/MM versus MM/DD ordering. " +
			"The export may combine chats from devices with different locales."
	}

	return result
}
