package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quartermaster/internal/directive"
	"quartermaster/internal/logging"
	"quartermaster/internal/shell"
	"quartermaster/internal/winget"
)

// Submit handles free text from the user: the model interprets it, the
// reply is classified, and the resulting directive is dispatched. Only
// transport failures come back as errors; everything the user should see,
// including command failures, lands in the Reply messages.
func (s *Session) Submit(ctx context.Context, input string) (Reply, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return s.reply(nil), nil
	}
	if s.state != StateAwaitingInput {
		return Reply{}, fmt.Errorf("cannot submit text in state %s", s.state)
	}

	userMsg := s.append(ctx, RoleUser, input)

	d, raw, err := s.directiveFor(ctx, input)
	if err != nil {
		logging.Session("model request failed: %v", err)
		errMsg := s.append(ctx, RoleError, fmt.Sprintf("The model request failed: %v", err))
		return s.reply([]Message{userMsg, errMsg}), nil
	}

	msgs := []Message{userMsg, s.append(ctx, RoleAssistant, raw)}
	msgs = append(msgs, s.dispatch(ctx, d)...)
	return s.reply(msgs), nil
}

// dispatch routes a classified directive.
func (s *Session) dispatch(ctx context.Context, d directive.Directive) []Message {
	logging.SessionDebug("dispatching %s", d.Kind)

	switch d.Kind {
	case directive.KindSearch:
		return s.runSearch(ctx, d.Term)
	case directive.KindInstall:
		return s.stageInstall(ctx, d.PackageID)
	case directive.KindSleep:
		return s.runSleep(ctx, d.Minutes)
	case directive.KindInvalidSleep:
		err := &PolicyError{Reason: fmt.Sprintf("sleep value %q is not a whole number of minutes", d.Raw)}
		return []Message{s.append(ctx, RoleError, err.Error())}
	case directive.KindRawCommand:
		return s.handleRawReply(ctx, d.Raw)
	default:
		return []Message{s.append(ctx, RoleError, "I didn't get a usable reply from the model. Try rephrasing.")}
	}
}

// runSearch executes a winget search and stages the results for selection.
func (s *Session) runSearch(ctx context.Context, term string) []Message {
	cmd := winget.SearchCommand(term)
	out, err := s.runner.Run(ctx, cmd, s.cfg.CommandTimeout)
	if msg, failed := s.commandFailure(ctx, cmd, out.Stderr, err); failed {
		return msg
	}

	results := winget.ParseSearchOutput(out.Stdout)
	if len(results) == 0 {
		err := &NoResultsError{Term: term}
		return []Message{s.append(ctx, RoleError, err.Error())}
	}

	s.results = results
	s.state = StateSelectingPackage

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d packages for %q. Pick one to install:", len(results), term)
	for _, r := range results {
		fmt.Fprintf(&b, "\n- %s (%s)", r.Name, r.ID)
	}
	return []Message{s.append(ctx, RoleSystem, b.String())}
}

// Choose resolves a selected result name to its package ID and moves to the
// install confirmation gate.
func (s *Session) Choose(ctx context.Context, name string) (Reply, error) {
	if s.state != StateSelectingPackage {
		return Reply{}, fmt.Errorf("cannot choose a package in state %s", s.state)
	}

	id, ok := winget.ResolveID(s.results, name)
	if !ok {
		err := &NotFoundError{Name: name}
		return s.reply([]Message{s.append(ctx, RoleError, err.Error())}), nil
	}

	s.results = nil
	return s.reply(s.stageInstall(ctx, id)), nil
}

// stageInstall arms the install confirmation gate.
func (s *Session) stageInstall(ctx context.Context, packageID string) []Message {
	s.installID = packageID
	s.state = StateConfirmingInstall

	prompt := fmt.Sprintf("Install %s? (y/n)", packageID)
	return []Message{s.append(ctx, RoleSystem, prompt)}
}

// Confirm resolves a pending yes/no gate.
func (s *Session) Confirm(ctx context.Context, yes bool) (Reply, error) {
	switch s.state {
	case StateConfirmingInstall:
		return s.reply(s.confirmInstall(ctx, yes)), nil
	case StateConfirmingRawCommand:
		return s.reply(s.confirmRawCommand(ctx, yes)), nil
	default:
		return Reply{}, fmt.Errorf("nothing to confirm in state %s", s.state)
	}
}

func (s *Session) confirmInstall(ctx context.Context, yes bool) []Message {
	packageID := s.installID
	s.installID = ""
	s.state = StateAwaitingInput

	if !yes {
		logging.Session("install of %s declined", packageID)
		return []Message{s.append(ctx, RoleSystem, "Installation cancelled.")}
	}

	cmd := winget.InstallCommand(packageID)
	out, err := s.runner.Run(ctx, cmd, s.cfg.CommandTimeout)
	if msg, failed := s.commandFailure(ctx, cmd, out.Stderr, err); failed {
		return msg
	}

	logging.Session("installed %s", packageID)
	return []Message{s.append(ctx, RoleSystem, fmt.Sprintf("Successfully installed %s.", packageID))}
}

// runSleep applies the standby timeout immediately; changing a power
// setting is cheap to reverse, so it carries no gate.
func (s *Session) runSleep(ctx context.Context, minutes int) []Message {
	cmd := winget.SleepCommand(minutes)
	out, err := s.runner.Run(ctx, cmd, s.cfg.CommandTimeout)
	if msg, failed := s.commandFailure(ctx, cmd, out.Stderr, err); failed {
		return msg
	}

	return []Message{s.append(ctx, RoleSystem, fmt.Sprintf("Sleep timeout set to %d minutes.", minutes))}
}

// handleRawReply deals with a model reply outside the directive grammar.
// With raw commands disallowed the reply is treated as conversation and
// nothing executes; a short note tells the user no action was taken. When
// allowed, the reply text is staged behind its own confirmation gate.
func (s *Session) handleRawReply(ctx context.Context, raw string) []Message {
	if !s.cfg.AllowRawCommands {
		logging.SessionDebug("raw reply kept conversational (%d bytes)", len(raw))
		note := "I couldn't map that request to a package or power action, so nothing was run."
		return []Message{s.append(ctx, RoleSystem, note)}
	}

	s.rawCommand = raw
	s.state = StateConfirmingRawCommand

	prompt := fmt.Sprintf("Run this as a shell command? (y/n)\n\n  %s", raw)
	return []Message{s.append(ctx, RoleSystem, prompt)}
}

func (s *Session) confirmRawCommand(ctx context.Context, yes bool) []Message {
	cmd := s.rawCommand
	s.rawCommand = ""
	s.state = StateAwaitingInput

	if !yes {
		return []Message{s.append(ctx, RoleSystem, "Command not run.")}
	}

	out, err := s.runner.Run(ctx, cmd, s.cfg.CommandTimeout)
	if msg, failed := s.commandFailure(ctx, cmd, out.Stderr, err); failed {
		return msg
	}

	body := strings.TrimSpace(out.Stdout)
	if body == "" {
		body = "(no output)"
	}
	return []Message{s.append(ctx, RoleSystem, body)}
}

// commandFailure converts a runner outcome into an error message when the
// command timed out or wrote to stderr. The empty-stderr convention is what
// winget itself follows.
func (s *Session) commandFailure(ctx context.Context, cmd, stderr string, err error) ([]Message, bool) {
	if err != nil {
		s.state = StateAwaitingInput
		if errors.Is(err, shell.ErrTimeout) {
			terr := &TimeoutError{Command: cmd, Timeout: s.cfg.CommandTimeout}
			logging.Session("%v", terr)
			return []Message{s.append(ctx, RoleError, terr.Error())}, true
		}
		return []Message{s.append(ctx, RoleError, fmt.Sprintf("command failed to run: %v", err))}, true
	}
	if stderr != "" {
		s.state = StateAwaitingInput
		eerr := &ExecutionError{Command: cmd, Stderr: strings.TrimSpace(stderr)}
		logging.Session("%v", eerr)
		return []Message{s.append(ctx, RoleError, eerr.Error())}, true
	}
	return nil, false
}

// reply snapshots the current state for the UI.
func (s *Session) reply(msgs []Message) Reply {
	r := Reply{Messages: msgs, State: s.state}
	if s.state == StateSelectingPackage {
		r.Results = s.results
	}
	return r
}
