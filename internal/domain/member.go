package domain

import (
	"fmt"
	"strings"
)

// Member is a trip participant. Email is the permanent identity (unique
// within a trip); Name is a mutable display attribute that falls back to
// the email when unset.
type Member struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// AddMember returns a copy of t with the new member appended to both
// Members and MemberEmails, keeping the two in lockstep.
// Returns ErrValidation if the email is empty, lacks an "@", or already
// belongs to a member of this trip; t is unchanged in that case.
func AddMember(t Trip, email string) (Trip, error) {
	if email == "" {
		return Trip{}, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return Trip{}, fmt.Errorf("%w: %q is not an email address", ErrValidation, email)
	}
	for _, existing := range t.MemberEmails {
		if existing == email {
			return Trip{}, fmt.Errorf("%w: %s is already a member", ErrValidation, email)
		}
	}

	members := make([]Member, len(t.Members), len(t.Members)+1)
	copy(members, t.Members)
	emails := make([]string, len(t.MemberEmails), len(t.MemberEmails)+1)
	copy(emails, t.MemberEmails)

	t.Members = append(members, Member{Email: email})
	t.MemberEmails = append(emails, email)
	return t, nil
}

// RenameMember returns a copy of t with the matching member's display name
// set to name, trimmed. A name that trims to empty unsets the display name,
// so DisplayName falls back to the email. An email with no matching member
// is a silent no-op — the trip is returned unchanged.
func RenameMember(t Trip, email, name string) Trip {
	members := make([]Member, len(t.Members))
	copy(members, t.Members)
	for i := range members {
		if members[i].Email == email {
			members[i].Name = strings.TrimSpace(name)
		}
	}
	t.Members = members
	return t
}

// DisplayName resolves a member email to its display name, falling back to
// the email itself when the member has no name set or is not a member of
// this trip at all. It never fails — bills may reference emails that were
// never added as members, and those still need to render.
func (t Trip) DisplayName(email string) string {
	for _, m := range t.Members {
		if m.Email == email && m.Name != "" {
			return m.Name
		}
	}
	return email
}
