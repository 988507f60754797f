package voice

import (
	"errors"
	"testing"
)

func validEvent() Event {
	return Event{
		Event:      EventPlay,
		LessonSlug: "intro-to-verbs",
		LevelIndex: 0,
		ItemIndex:  2,
		Engine:     EngineBrowser,
		Language:   "en-US",
		Rate:       1.0,
	}
}

func TestEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Event)
		wantErr error
	}{
		{
			name:   "valid play event",
			mutate: func(e *Event) {},
		},
		{
			name: "valid stop with reason",
			mutate: func(e *Event) {
				e.Event = EventStop
				e.Reason = "navigation"
			},
		},
		{
			name: "valid ai engine with preset",
			mutate: func(e *Event) {
				e.Engine = EngineAI
				e.VoicePreset = "nova"
			},
		},
		{
			name:    "unknown event kind",
			mutate:  func(e *Event) { e.Event = "voice_seek" },
			wantErr: ErrUnknownEvent,
		},
		{
			name:    "unknown engine",
			mutate:  func(e *Event) { e.Engine = "cloud" },
			wantErr: ErrUnknownEngine,
		},
		{
			name:    "missing lesson slug",
			mutate:  func(e *Event) { e.LessonSlug = "" },
			wantErr: ErrMissingLesson,
		},
		{
			name:    "missing language",
			mutate:  func(e *Event) { e.Language = "" },
			wantErr: ErrMissingLanguage,
		},
		{
			name:    "negative level index",
			mutate:  func(e *Event) { e.LevelIndex = -1 },
			wantErr: ErrNegativeIndex,
		},
		{
			name:    "negative item index",
			mutate:  func(e *Event) { e.ItemIndex = -3 },
			wantErr: ErrNegativeIndex,
		},
		{
			name:    "reason on a non-stop event",
			mutate:  func(e *Event) { e.Reason = "navigation" },
			wantErr: ErrUnexpectedReason,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.mutate(&e)

			err := e.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
