// Package winget parses winget search output and builds the fixed command
// templates Quartermaster is allowed to issue.
package winget

import (
	"fmt"
	"regexp"
	"strings"

	"quartermaster/internal/logging"
)

// SearchResult is one row of winget search output. Name is the display name
// used as the UI selection key; ID is the package identifier passed to
// install.
type SearchResult struct {
	Name string
	ID   string
}

// rowPattern extracts the first two of four whitespace-separated fields.
// The name is captured non-greedily, so a display name with internal spaces
// splits at its first gap; rows with fewer than four fields are dropped.
var rowPattern = regexp.MustCompile(`^(.+?)\s+(\S+)\s+(\S+)\s+(\S+)`)

// separatorPattern matches the dashed rule winget prints between the column
// header and the data rows.
var separatorPattern = regexp.MustCompile(`^-{4,}\s*$`)

// legacyHeaderLines is the fallback header skip when no separator line is
// present in the output.
const legacyHeaderLines = 3

// ParseSearchOutput parses winget search output into results. The header
// boundary is the last separator line when one exists; otherwise the first
// three lines are skipped. Too-short output yields an empty slice, never an
// error - the caller surfaces the no-results condition.
func ParseSearchOutput(raw string) []SearchResult {
	lines := strings.Split(raw, "\n")

	start := -1
	for i, line := range lines {
		if separatorPattern.MatchString(strings.TrimRight(line, "\r")) {
			start = i + 1
		}
	}
	if start < 0 {
		start = legacyHeaderLines
	}

	if len(lines) <= start {
		logging.DirectiveDebug("search output too short: %d lines, header ends at %d", len(lines), start)
		return nil
	}

	var results []SearchResult
	for _, line := range lines[start:] {
		m := rowPattern.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		results = append(results, SearchResult{
			Name: strings.TrimSpace(m[1]),
			ID:   m[2],
		})
	}

	logging.DirectiveDebug("parsed %d search results", len(results))
	return results
}

// ResolveID returns the package identifier for a display name. Collisions
// resolve to the first match, in source order.
func ResolveID(results []SearchResult, name string) (string, bool) {
	for _, r := range results {
		if r.Name == name {
			return r.ID, true
		}
	}
	return "", false
}

// SearchCommand builds the winget search invocation. The term is wrapped in
// double quotes; embedded quotes are stripped rather than escaped since
// winget terms never legitimately contain them.
func SearchCommand(term string) string {
	return fmt.Sprintf("winget search %q", sanitize(term))
}

// InstallCommand builds the exact-match winget install invocation.
func InstallCommand(packageID string) string {
	return fmt.Sprintf("winget install --id %q -e", sanitize(packageID))
}

// SleepCommand builds the powercfg invocation setting the AC standby
// timeout in minutes.
func SleepCommand(minutes int) string {
	return fmt.Sprintf(`powershell -Command "powercfg /change /standby-timeout-ac %d"`, minutes)
}

func sanitize(s string) string {
	return strings.NewReplacer(`"`, "", "\n", " ", "\r", " ").Replace(s)
}
