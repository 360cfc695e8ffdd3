package ics

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// UIDDomain is the fixed suffix that makes generated identifiers valid
// calendar UID tokens.
const UIDDomain = "powerdashhr.com"

// StableUID derives a deterministic calendar UID from the identifying facts
// of a meeting occurrence, so resending the same interview slot updates the
// existing event in the recipient's calendar instead of creating a new one.
//
// Callers must pass the parts in the same order every time; the recommended
// set is subject, organizer email, and the RFC 3339 start instant. Blank
// parts are discarded and the rest are trimmed before hashing. Every input,
// including no usable parts at all, yields a valid non-empty UID.
func StableUID(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}
	sum := sha256.Sum256([]byte(strings.Join(kept, "|")))
	return hex.EncodeToString(sum[:])[:32] + "@" + UIDDomain
}

// RandomUID returns a unique calendar UID for one-off invites that should
// never deduplicate against earlier sends.
func RandomUID() string {
	return uuid.NewString() + "@" + UIDDomain
}
