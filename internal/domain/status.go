package domain

import (
	"strings"
	"unicode/utf8"
)

// MaxErrorMessageLen bounds Document.ErrorMessage in characters.
const MaxErrorMessageLen = 500

// legalTransitions is the lifecycle table. Terminal states have no entry.
var legalTransitions = map[ProcessingStatus][]ProcessingStatus{
	ProcessingStatusPending:    {ProcessingStatusProcessing},
	ProcessingStatusProcessing: {ProcessingStatusCompleted, ProcessingStatusFailed},
}

// IsTerminal reports whether no further transition can leave s.
func (s ProcessingStatus) IsTerminal() bool {
	return s == ProcessingStatusCompleted || s == ProcessingStatusFailed
}

// IsValid reports whether s is a known lifecycle state.
func (s ProcessingStatus) IsValid() bool {
	switch s {
	case ProcessingStatusPending, ProcessingStatusProcessing, ProcessingStatusCompleted, ProcessingStatusFailed:
		return true
	}
	return false
}

// CanTransitionTo reports whether s -> next is a legal lifecycle step.
func (s ProcessingStatus) CanTransitionTo(next ProcessingStatus) bool {
	for _, allowed := range legalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TruncateErrorMessage shortens msg to at most MaxErrorMessageLen characters,
// marking the cut with an ellipsis. Invalid UTF-8 is replaced so the result
// is always storable in a text column.
func TruncateErrorMessage(msg string) string {
	msg = strings.ToValidUTF8(msg, "\uFFFD")
	if utf8.RuneCountInString(msg) <= MaxErrorMessageLen {
		return msg
	}
	const suffix = "..."
	runes := []rune(msg)
	return string(runes[:MaxErrorMessageLen-len(suffix)]) + suffix
}
