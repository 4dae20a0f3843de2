package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Normalize decodes a raw trip document into a Trip, transparently upgrading
// the legacy schema where members was a plain array of email strings.
//
// For a legacy document, members becomes []Member (name unset) and
// memberEmails becomes the original array, order preserved. The second
// return value reports whether that upgrade happened — the caller owns
// persisting the migrated shape back to the store, exactly once per stale
// read. Normalize is idempotent: a document it has already upgraded decodes
// as current-schema and reports false.
//
// The store-assigned id always wins over any id field inside the document.
func Normalize(id uuid.UUID, raw []byte) (Trip, bool, error) {
	var probe struct {
		Members json.RawMessage `json:"members"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Trip{}, false, fmt.Errorf("domain.Normalize: %w", err)
	}

	// Legacy shape: members decodes as a non-empty string array.
	// An array of Member objects fails this decode, so current-schema
	// documents never take this path.
	var emails []string
	if len(probe.Members) > 0 && json.Unmarshal(probe.Members, &emails) == nil && len(emails) > 0 {
		var legacy struct {
			Trip
			Members []string `json:"members"`
		}
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return Trip{}, false, fmt.Errorf("domain.Normalize: legacy document: %w", err)
		}

		t := legacy.Trip
		t.ID = id
		t.Members = make([]Member, len(emails))
		for i, email := range emails {
			t.Members[i] = Member{Email: email}
		}
		t.MemberEmails = emails
		return t, true, nil
	}

	var t Trip
	if err := json.Unmarshal(raw, &t); err != nil {
		return Trip{}, false, fmt.Errorf("domain.Normalize: %w", err)
	}
	t.ID = id
	return t, false, nil
}
