// Package session holds the conversation state machine. It owns the
// transcript, asks the model to interpret user input, classifies the reply,
// and drives command execution through the confirmation gates. All state
// lives on the Session value; nothing here is global.
package session

import (
	"context"
	"time"

	"quartermaster/internal/config"
	"quartermaster/internal/directive"
	"quartermaster/internal/llm"
	"quartermaster/internal/logging"
	"quartermaster/internal/shell"
	"quartermaster/internal/winget"
)

// State is the session's position in the interaction flow. The UI reads it
// to decide which input widget to show.
type State int

const (
	// StateAwaitingInput accepts free text for the model.
	StateAwaitingInput State = iota

	// StateSelectingPackage waits for the user to pick a search result.
	StateSelectingPackage

	// StateConfirmingInstall waits for a yes/no on a pending install.
	StateConfirmingInstall

	// StateConfirmingRawCommand waits for a yes/no on a model-proposed
	// command outside the known directive set.
	StateConfirmingRawCommand
)

func (s State) String() string {
	switch s {
	case StateSelectingPackage:
		return "selecting-package"
	case StateConfirmingInstall:
		return "confirming-install"
	case StateConfirmingRawCommand:
		return "confirming-raw-command"
	default:
		return "awaiting-input"
	}
}

// CommandRunner executes a command string. Satisfied by *shell.Runner.
type CommandRunner interface {
	Run(ctx context.Context, command string, timeout time.Duration) (shell.Outcome, error)
}

// Recorder persists transcript turns. Satisfied by *store.Store. Recording
// failures are logged, never surfaced; losing history must not break a
// conversation.
type Recorder interface {
	AppendTurn(ctx context.Context, sessionID string, role, content string) error
}

// Reply is what one user action produced: the messages appended to the
// transcript, the resulting state, and the search results when the state
// asks for a selection.
type Reply struct {
	Messages []Message
	State    State
	Results  []winget.SearchResult
}

// Session is one conversation. Not safe for concurrent use; the UI event
// loop is its single caller.
type Session struct {
	client   llm.Client
	runner   CommandRunner
	recorder Recorder
	cfg      config.ExecutionConfig

	transcript *Transcript
	state      State

	// Pending work across the selection and confirmation states.
	results    []winget.SearchResult
	installID  string
	rawCommand string
}

// Option configures a Session.
type Option func(*Session)

// WithRecorder attaches a transcript recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// New creates a session in StateAwaitingInput.
func New(client llm.Client, runner CommandRunner, cfg config.ExecutionConfig, opts ...Option) *Session {
	s := &Session{
		client:     client,
		runner:     runner,
		cfg:        cfg,
		transcript: NewTranscript(),
		state:      StateAwaitingInput,
	}
	for _, opt := range opts {
		opt(s)
	}

	logging.Session("session %s started (allow_raw=%t)", s.transcript.ID(), cfg.AllowRawCommands)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.transcript.ID()
}

// State returns the current interaction state.
func (s *Session) State() State {
	return s.state
}

// Transcript returns the session history.
func (s *Session) Transcript() *Transcript {
	return s.transcript
}

// Results returns the search results awaiting selection.
func (s *Session) Results() []winget.SearchResult {
	return s.results
}

// append adds a message to the transcript and persists it.
func (s *Session) append(ctx context.Context, role Role, content string) Message {
	msg := s.transcript.Append(role, content)
	if s.recorder != nil {
		if err := s.recorder.AppendTurn(ctx, s.transcript.ID(), string(role), content); err != nil {
			logging.Session("recording turn failed: %v", err)
		}
	}
	return msg
}

// directiveFor runs the model over the user's text and classifies the reply.
func (s *Session) directiveFor(ctx context.Context, input string) (directive.Directive, string, error) {
	reply, err := s.client.CompleteWithSystem(ctx, llm.SystemPrompt, input)
	if err != nil {
		return directive.Directive{}, "", err
	}
	return directive.Classify(reply), reply, nil
}
