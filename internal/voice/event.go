// Package voice reads and aggregates voice-playback telemetry from
// append-only, date-partitioned JSONL logs.
package voice

import (
	"errors"
	"fmt"
)

// Telemetry event kinds.
const (
	EventPlay   = "voice_play"
	EventEnd    = "voice_end"
	EventStop   = "voice_stop"
	EventPause  = "voice_pause"
	EventResume = "voice_resume"
	EventError  = "voice_error"
)

// Speech engines.
const (
	EngineBrowser = "browser"
	EngineAI      = "ai"
)

// Shape validation errors. All of them are counted as parse errors by the
// reader rather than raised.
var (
	ErrUnknownEvent     = errors.New("unknown telemetry event kind")
	ErrUnknownEngine    = errors.New("unknown speech engine")
	ErrMissingLesson    = errors.New("missing lesson slug")
	ErrMissingLanguage  = errors.New("missing language code")
	ErrNegativeIndex    = errors.New("negative level or item index")
	ErrUnexpectedReason = errors.New("reason is only valid on voice_stop")
)

// Event is one line of the voice telemetry log. Field names follow the
// log's wire format.
type Event struct {
	Event       string  `json:"event"`
	LessonSlug  string  `json:"lessonSlug"`
	LevelIndex  int     `json:"levelIndex"`
	ItemIndex   int     `json:"itemIndex"`
	Engine      string  `json:"engine"`
	Language    string  `json:"languageCode"`
	VoicePreset string  `json:"voicePresetKey,omitempty"`
	Rate        float64 `json:"rate,omitempty"`
	Reason      string  `json:"reason,omitempty"` // voice_stop only
}

// validEvents is the accepted event enum.
var validEvents = map[string]bool{
	EventPlay:   true,
	EventEnd:    true,
	EventStop:   true,
	EventPause:  true,
	EventResume: true,
	EventError:  true,
}

// Validate checks the decoded line against the telemetry event shape.
func (e *Event) Validate() error {
	if !validEvents[e.Event] {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, e.Event)
	}
	if e.Engine != EngineBrowser && e.Engine != EngineAI {
		return fmt.Errorf("%w: %q", ErrUnknownEngine, e.Engine)
	}
	if e.LessonSlug == "" {
		return ErrMissingLesson
	}
	if e.Language == "" {
		return ErrMissingLanguage
	}
	if e.LevelIndex < 0 || e.ItemIndex < 0 {
		return ErrNegativeIndex
	}
	if e.Reason != "" && e.Event != EventStop {
		return ErrUnexpectedReason
	}
	return nil
}
