package history

import (
	"slices"
	"strings"
	"sync"

	"data-chatter/internal/display"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one role-tagged entry of the conversation.
type Turn struct {
	Role     Role
	Elements []display.Element
}

// UserText builds a user turn from a plain utterance.
func UserText(content string) Turn {
	return Turn{Role: RoleUser, Elements: []display.Element{display.Text{Content: content}}}
}

// Log is the append-only conversation of one session.
type Log struct {
	mu    sync.RWMutex
	turns []Turn
}

func NewLog() *Log {
	return &Log{}
}

// Append adds t and reports whether it was added. A user turn whose elements
// equal those of an immediately preceding user turn is dropped.
func (l *Log) Append(t Turn) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t.Role == RoleUser && len(l.turns) > 0 {
		last := l.turns[len(l.turns)-1]
		if last.Role == RoleUser && slices.Equal(last.Elements, t.Elements) {
			return false
		}
	}
	l.turns = append(l.turns, Turn{Role: t.Role, Elements: slices.Clone(t.Elements)})
	return true
}

// Turns returns a copy of the log in chronological order.
func (l *Log) Turns() []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Turn, len(l.turns))
	for i, t := range l.turns {
		out[i] = Turn{Role: t.Role, Elements: slices.Clone(t.Elements)}
	}
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

// TranscriptText joins every Text element of every turn with a blank line.
func (l *Log) TranscriptText() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var parts []string
	for _, t := range l.turns {
		parts = append(parts, display.Texts(t.Elements)...)
	}
	return strings.Join(parts, "\n\n")
}

func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = nil
}
