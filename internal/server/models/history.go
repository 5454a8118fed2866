package models

import "time"

// Mode is one of the fixed AI rewriting modes.
type Mode string

const (
	ModeParaphrase Mode = "paraphrase"
	ModeSummarize  Mode = "summarize"
	ModeFormal     Mode = "formal"
	ModeSimple     Mode = "simple"
	ModeCreative   Mode = "creative"
	ModeExpand     Mode = "expand"
	ModeShorten    Mode = "shorten"
	ModeContinue   Mode = "continue"
)

// DefaultMode is used when the requested mode is empty or unknown.
const DefaultMode = ModeParaphrase

// Modes lists every supported mode in display order.
var Modes = []Mode{
	ModeParaphrase, ModeSummarize, ModeFormal, ModeSimple,
	ModeCreative, ModeExpand, ModeShorten, ModeContinue,
}

// Valid reports whether m is a supported mode.
func (m Mode) Valid() bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// ParseMode returns the supported mode named by s, or DefaultMode.
func ParseMode(s string) Mode {
	if m := Mode(s); m.Valid() {
		return m
	}
	return DefaultMode
}

// HistoryEntry records one AI invocation. UserID is nil for entries that are
// not linked to a user.
type HistoryEntry struct {
	ID            string
	UserID        *string
	OriginalText  string
	ProcessedText string
	Mode          Mode
	CreatedAt     time.Time
}
