package statement

import (
	"strings"
	"unicode/utf8"
)

// Filter is the single invariant-enforcement point shared by the local CSV
// path and the remote path. It drops any transaction with an unresolvable
// date or an empty description, so downstream consumers never see a record
// violating the model invariants. Zero amounts survive: a visibly wrong
// zero the user can correct beats a silently dropped row.
func Filter(transactions []ParsedTransaction) []ParsedTransaction {
	filtered := make([]ParsedTransaction, 0, len(transactions))
	for _, tx := range transactions {
		tx.Description = strings.TrimSpace(sanitizeUTF8(tx.Description))
		if tx.Date.IsZero() {
			continue
		}
		if tx.Description == "" {
			continue
		}
		filtered = append(filtered, tx)
	}
	return filtered
}

// sanitizeUTF8 removes invalid UTF-8 sequences from string
// This prevents PostgreSQL encoding errors when saving text
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	var result strings.Builder
	result.Grow(len(s))

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			s = s[1:]
			continue
		}
		result.WriteRune(r)
		s = s[size:]
	}

	return result.String()
}
