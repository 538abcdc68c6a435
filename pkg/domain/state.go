package domain

import (
	"encoding/json"
	"slices"
)

// PromptSlot indexes a segment of the shell prompt.
type PromptSlot int

// PromptSlotGit is reserved for the repository/branch segment.
const PromptSlotGit PromptSlot = 0

// State is the immutable snapshot the shell threads through every command.
// The zero value is not useful; build one with NewState.
type State struct {
	workingDirectory string
	logLevel         LogLevel
	prompt           []string
}

// Patch carries the fields to override in State.With.
// Nil fields carry over from the receiver.
type Patch struct {
	WorkingDirectory *string
	LogLevel         *LogLevel
	// Prompt replaces the whole segment list when non-nil.
	Prompt []string
}

// NewState creates a state rooted at workingDirectory.
func NewState(workingDirectory string, level LogLevel, prompt ...string) *State {
	return &State{
		workingDirectory: workingDirectory,
		logLevel:         level,
		prompt:           normalizePrompt(prompt),
	}
}

// WorkingDirectory returns the directory commands resolve paths against.
func (s *State) WorkingDirectory() string { return s.workingDirectory }

// LogLevel returns the verbosity threshold of the session.
func (s *State) LogLevel() LogLevel { return s.logLevel }

// Prompt returns a copy of the prompt segments.
func (s *State) Prompt() []string { return slices.Clone(s.prompt) }

// PromptSegment returns the segment at slot, or "" when unset.
func (s *State) PromptSegment(slot PromptSlot) string {
	if int(slot) < 0 || int(slot) >= len(s.prompt) {
		return ""
	}
	return s.prompt[slot]
}

// With returns a new State with the patch applied. The receiver is untouched
// and the result shares no mutable storage with it.
func (s *State) With(p Patch) *State {
	next := &State{
		workingDirectory: s.workingDirectory,
		logLevel:         s.logLevel,
		prompt:           slices.Clone(s.prompt),
	}
	if p.WorkingDirectory != nil {
		next.workingDirectory = *p.WorkingDirectory
	}
	if p.LogLevel != nil {
		next.logLevel = *p.LogLevel
	}
	if p.Prompt != nil {
		next.prompt = normalizePrompt(p.Prompt)
	}
	return next
}

// Clone returns an equal State with independent storage.
func (s *State) Clone() *State {
	return s.With(Patch{})
}

// WithWorkingDirectory is shorthand for With(Patch{WorkingDirectory: &dir}).
func (s *State) WithWorkingDirectory(dir string) *State {
	return s.With(Patch{WorkingDirectory: &dir})
}

// WithLogLevel is shorthand for With(Patch{LogLevel: &level}).
func (s *State) WithLogLevel(level LogLevel) *State {
	return s.With(Patch{LogLevel: &level})
}

// WithPrompt replaces every prompt segment.
func (s *State) WithPrompt(segments ...string) *State {
	if segments == nil {
		segments = []string{}
	}
	return s.With(Patch{Prompt: segments})
}

// WithPromptSegment sets a single slot, growing the list as needed.
// Setting a slot to "" clears it.
func (s *State) WithPromptSegment(slot PromptSlot, text string) *State {
	segments := slices.Clone(s.prompt)
	for len(segments) <= int(slot) {
		segments = append(segments, "")
	}
	segments[slot] = text
	return s.With(Patch{Prompt: segments})
}

// Field returns the value stored under f, for delta comparison.
func (s *State) Field(f Field) any {
	switch f {
	case FieldWorkingDirectory:
		return s.workingDirectory
	case FieldLogLevel:
		return s.logLevel
	case FieldPrompt:
		return s.prompt
	default:
		return nil
	}
}

// Equal reports whether every field of s and other match.
func (s *State) Equal(other *State) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.workingDirectory == other.workingDirectory &&
		s.logLevel == other.logLevel &&
		slices.Equal(s.prompt, other.prompt)
}

type stateJSON struct {
	WorkingDirectory string   `json:"working_directory"`
	LogLevel         string   `json:"log_level"`
	Prompt           []string `json:"prompt"`
}

// MarshalJSON implements json.Marshaler.
func (s *State) MarshalJSON() ([]byte, error) {
	prompt := s.prompt
	if prompt == nil {
		prompt = []string{}
	}
	return json.Marshal(stateJSON{
		WorkingDirectory: s.workingDirectory,
		LogLevel:         s.logLevel.String(),
		Prompt:           prompt,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	level, err := ParseLogLevel(raw.LogLevel)
	if err != nil {
		return err
	}
	s.workingDirectory = raw.WorkingDirectory
	s.logLevel = level
	s.prompt = normalizePrompt(raw.Prompt)
	return nil
}

// normalizePrompt copies segments and drops trailing empty slots, so a
// cleared slot and a never-set slot compare equal.
func normalizePrompt(segments []string) []string {
	end := len(segments)
	for end > 0 && segments[end-1] == "" {
		end--
	}
	if end == 0 {
		return nil
	}
	return slices.Clone(segments[:end])
}
