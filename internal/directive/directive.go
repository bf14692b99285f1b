// Package directive classifies language model replies against the fixed
// directive grammar. A reply either carries one of the known directive
// markers or it falls through to the raw-command / unrecognized variants;
// classification never executes anything.
package directive

import (
	"strconv"
	"strings"

	"quartermaster/internal/logging"
)

// Kind identifies the directive variant.
type Kind int

const (
	// KindUnrecognized covers empty or whitespace-only model replies.
	KindUnrecognized Kind = iota

	// KindSearch requests a package search.
	KindSearch

	// KindInstall requests an install of a known package identifier.
	KindInstall

	// KindSleep requests a sleep-timeout change.
	KindSleep

	// KindInvalidSleep is a sleep directive whose payload is not an
	// integer. Distinct from KindSleep so the user is told the value was
	// invalid instead of it being silently ignored.
	KindInvalidSleep

	// KindRawCommand is any non-empty reply matching no marker. Whether it
	// is ever executed is a dispatcher policy decision; classification is
	// intentionally permissive here.
	KindRawCommand
)

// String returns the display name of a kind.
func (k Kind) String() string {
	switch k {
	case KindSearch:
		return "search"
	case KindInstall:
		return "install"
	case KindSleep:
		return "sleep"
	case KindInvalidSleep:
		return "invalid-sleep"
	case KindRawCommand:
		return "raw-command"
	default:
		return "unrecognized"
	}
}

// Directive is the classified intent extracted from a model reply.
// Exactly one variant is produced per reply; the populated payload field
// depends on Kind.
type Directive struct {
	Kind Kind

	// Term is set for KindSearch.
	Term string

	// PackageID is set for KindInstall.
	PackageID string

	// Minutes is set for KindSleep.
	Minutes int

	// Raw carries the reply text for KindRawCommand, and the unparsable
	// payload for KindInvalidSleep.
	Raw string
}

// Directive markers. Matching is case-sensitive substring containment, not
// anchored to line start, mirroring the grammar the model is prompted with.
const (
	MarkerSearch  = "WINGET_SEARCH:"
	MarkerInstall = "WINGET_INSTALL:"
	MarkerSleep   = "POWERSHELL_SLEEP:"
)

// Classify maps a model reply to a Directive. When a reply contains more
// than one marker the earliest substring position wins.
func Classify(reply string) Directive {
	trimmed := strings.TrimSpace(reply)
	if trimmed == "" {
		logging.DirectiveDebug("empty reply classified as unrecognized")
		return Directive{Kind: KindUnrecognized}
	}

	type candidate struct {
		kind   Kind
		marker string
		pos    int
	}

	candidates := []candidate{
		{KindSearch, MarkerSearch, strings.Index(reply, MarkerSearch)},
		{KindInstall, MarkerInstall, strings.Index(reply, MarkerInstall)},
		{KindSleep, MarkerSleep, strings.Index(reply, MarkerSleep)},
	}

	best := candidate{pos: -1}
	for _, c := range candidates {
		if c.pos < 0 {
			continue
		}
		if best.pos < 0 || c.pos < best.pos {
			best = c
		}
	}

	if best.pos < 0 {
		logging.DirectiveDebug("no marker found, raw-command candidate (%d bytes)", len(reply))
		return Directive{Kind: KindRawCommand, Raw: trimmed}
	}

	payload := strings.TrimSpace(reply[best.pos+len(best.marker):])

	switch best.kind {
	case KindSearch:
		logging.Directive("classified search: term=%q", payload)
		return Directive{Kind: KindSearch, Term: payload}
	case KindInstall:
		logging.Directive("classified install: id=%q", payload)
		return Directive{Kind: KindInstall, PackageID: payload}
	default:
		minutes, err := strconv.Atoi(payload)
		if err != nil {
			logging.Directive("sleep payload not an integer: %q", payload)
			return Directive{Kind: KindInvalidSleep, Raw: payload}
		}
		logging.Directive("classified sleep: minutes=%d", minutes)
		return Directive{Kind: KindSleep, Minutes: minutes}
	}
}
