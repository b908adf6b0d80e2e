// Package session holds the per-user state of a data conversation and the
// lifecycle of its remote container.
package session

import (
	"github.com/google/uuid"

	"data-chatter/internal/artifact"
	"data-chatter/internal/history"
	"data-chatter/internal/llm"
)

// Dataset is the tabular file the conversation is about.
type Dataset struct {
	Name string
	Data []byte
}

// Container is the remote execution container bound to a session together
// with the tool configuration that refers to it.
type Container struct {
	ID    string
	Tools []llm.Tool
}

// Settings are the per-session call parameters chosen by the user.
type Settings struct {
	Model       string
	Temperature float64
}

// Session is the complete state of one conversation. It is owned by a
// single handler and is not safe for concurrent turns.
type Session struct {
	ID        string
	Log       *history.Log
	Artifacts *artifact.Store

	dataset   *Dataset
	container *Container
	settings  Settings
}

func New(settings Settings) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Log:       history.NewLog(),
		Artifacts: artifact.NewStore(),
		settings:  settings,
	}
}

func (s *Session) Dataset() *Dataset     { return s.dataset }
func (s *Session) Container() *Container { return s.container }
func (s *Session) Settings() Settings    { return s.settings }

// SetDataset records the dataset for the session. An existing container is
// kept; the new dataset is only provisioned after DropContainer.
func (s *Session) SetDataset(d Dataset) {
	s.dataset = &d
}

func (s *Session) SetModel(model string) { s.settings.Model = model }

func (s *Session) SetTemperature(t float64) { s.settings.Temperature = t }

// DropContainer forgets the current container so the next turn provisions
// a fresh one.
func (s *Session) DropContainer() {
	s.container = nil
}

// Reset clears the conversation and the artifacts it produced.
func (s *Session) Reset() {
	s.Log.Reset()
	s.Artifacts.Reset()
}
