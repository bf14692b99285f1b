package directive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  Directive
	}{
		{
			name:  "search",
			reply: "WINGET_SEARCH: vscode",
			want:  Directive{Kind: KindSearch, Term: "vscode"},
		},
		{
			name:  "install",
			reply: "WINGET_INSTALL: Microsoft.VisualStudioCode",
			want:  Directive{Kind: KindInstall, PackageID: "Microsoft.VisualStudioCode"},
		},
		{
			name:  "sleep",
			reply: "POWERSHELL_SLEEP: 30",
			want:  Directive{Kind: KindSleep, Minutes: 30},
		},
		{
			name:  "sleep invalid payload",
			reply: "POWERSHELL_SLEEP: abc",
			want:  Directive{Kind: KindInvalidSleep, Raw: "abc"},
		},
		{
			name:  "sleep negative is still an integer",
			reply: "POWERSHELL_SLEEP: -5",
			want:  Directive{Kind: KindSleep, Minutes: -5},
		},
		{
			name:  "no marker falls through to raw command",
			reply: "I don't understand",
			want:  Directive{Kind: KindRawCommand, Raw: "I don't understand"},
		},
		{
			name:  "empty reply",
			reply: "",
			want:  Directive{Kind: KindUnrecognized},
		},
		{
			name:  "whitespace-only reply",
			reply: "   \n\t",
			want:  Directive{Kind: KindUnrecognized},
		},
		{
			name:  "marker mid-text still matches",
			reply: "Sure! WINGET_SEARCH: 7zip",
			want:  Directive{Kind: KindSearch, Term: "7zip"},
		},
		{
			name:  "payload trimmed",
			reply: "WINGET_INSTALL:   7zip.7zip  ",
			want:  Directive{Kind: KindInstall, PackageID: "7zip.7zip"},
		},
		{
			name:  "lowercase marker does not match",
			reply: "winget_search: vscode",
			want:  Directive{Kind: KindRawCommand, Raw: "winget_search: vscode"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.reply)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Classify(%q) mismatch (-want +got):\n%s", tt.reply, diff)
			}
		})
	}
}

// Multiple markers in one reply are not expected from a well-behaved model,
// but when they occur the earliest substring position wins.
func TestClassifyMarkerPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  Kind
	}{
		{
			name:  "install before search",
			reply: "WINGET_INSTALL: a WINGET_SEARCH: b",
			want:  KindInstall,
		},
		{
			name:  "search before install",
			reply: "WINGET_SEARCH: a WINGET_INSTALL: b",
			want:  KindSearch,
		},
		{
			name:  "sleep before search",
			reply: "POWERSHELL_SLEEP: 10 then WINGET_SEARCH: x",
			want:  KindSleep,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.reply); got.Kind != tt.want {
				t.Errorf("Classify(%q).Kind = %s, want %s", tt.reply, got.Kind, tt.want)
			}
		})
	}
}

func TestClassifyEarliestPayloadIncludesLaterMarkers(t *testing.T) {
	// The payload is everything after the winning marker, trimmed; a later
	// marker is payload text, not a second directive.
	got := Classify("WINGET_SEARCH: a WINGET_INSTALL: b")
	if got.Kind != KindSearch {
		t.Fatalf("Kind = %s, want search", got.Kind)
	}
	if got.Term != "a WINGET_INSTALL: b" {
		t.Errorf("Term = %q", got.Term)
	}
}
