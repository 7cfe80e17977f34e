// Package snapshot captures the machine's package state exactly once
// per run: one bulk list-installed query and one bulk list-upgradable
// query, regardless of how many packages are configured. The captured
// text is immutable for the rest of the run; plan decisions are made
// against state-at-scan-time.
//
// Querying each package individually would also work, at O(n) external
// invocations; only reach for that if a backing manager cannot produce
// bulk listings.
package snapshot

import (
	"context"
	"strings"
	"time"

	"github.com/arthur-debert/pkgsync/pkg/logging"
	"github.com/arthur-debert/pkgsync/pkg/manager"
)

// Snapshot holds the raw bulk query output. Membership tests are
// token-boundary anchored, not raw substring: a configured Foo.Bar must
// not match an installed Foo.BarBaz.
type Snapshot struct {
	installed  string
	upgradable string
}

// New builds a snapshot from raw query text. Used directly by tests;
// production code goes through Take.
func New(installed, upgradable string) Snapshot {
	return Snapshot{installed: installed, upgradable: upgradable}
}

// Take issues the two bulk queries sequentially, each bounded by
// timeout. A failed query degrades to an empty result set: the
// reconciliation proceeds with a possibly-incomplete view rather than
// aborting, since the backing manager exits non-zero for benign cases
// like "nothing to upgrade".
func Take(ctx context.Context, m manager.Manager, timeout time.Duration) Snapshot {
	logger := logging.GetLogger("snapshot")

	installed := bulkQuery(ctx, timeout, "list-installed", m.ListInstalled)
	upgradable := bulkQuery(ctx, timeout, "list-upgradable", m.ListUpgradable)

	logger.Debug().
		Int("installedBytes", len(installed)).
		Int("upgradableBytes", len(upgradable)).
		Msg("Captured system snapshot")

	return Snapshot{installed: installed, upgradable: upgradable}
}

func bulkQuery(ctx context.Context, timeout time.Duration, name string, query func(context.Context) (string, error)) string {
	logger := logging.GetLogger("snapshot")

	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := query(queryCtx)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("query", name).
			Msg("Bulk query failed, treating as empty result set")
		return ""
	}
	return text
}

// Installed reports whether id appears in the installed listing.
func (s Snapshot) Installed(id string) bool {
	return containsToken(s.installed, id)
}

// Upgradable reports whether id appears in the upgradable listing.
func (s Snapshot) Upgradable(id string) bool {
	return containsToken(s.upgradable, id)
}

// containsToken reports whether token occurs in text flanked by
// non-identifier characters (or the text boundary). Matching is
// case-insensitive because the backing manager's output casing is not
// guaranteed to match the catalog id.
func containsToken(text, token string) bool {
	if token == "" {
		return false
	}

	text = strings.ToLower(text)
	token = strings.ToLower(token)

	for from := 0; ; {
		i := strings.Index(text[from:], token)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(token)

		startOK := start == 0 || !isIdentChar(text[start-1])
		endOK := end == len(text) || !isIdentChar(text[end])
		if startOK && endOK {
			return true
		}

		from = start + 1
	}
}

// isIdentChar matches the characters package identifiers are made of.
func isIdentChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '.' || c == '_' || c == '+' || c == '-':
		return true
	}
	return false
}
