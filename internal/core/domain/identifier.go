package domain

import (
	"encoding/json"
	"strings"
)

// Identifier is a tagged union referencing a participant either by user ID
// (registered) or by raw email (not yet registered). Work record claim lists
// and connection endpoints both hold mixed identifiers; an email entry is
// upgraded to a user reference once that person registers and accepts.
type Identifier struct {
	userID string
	email  string
}

// UserRef builds an Identifier pointing at a registered user.
func UserRef(id string) Identifier {
	return Identifier{userID: id}
}

// EmailRef builds an Identifier for a not-yet-registered participant.
// The address is lowercased so that lookups are case-insensitive.
func EmailRef(email string) Identifier {
	return Identifier{email: strings.ToLower(strings.TrimSpace(email))}
}

// ParseIdentifier interprets a stored raw identifier. Anything containing
// "@" is an email; everything else is treated as a user ID.
func ParseIdentifier(raw string) Identifier {
	if strings.Contains(raw, "@") {
		return EmailRef(raw)
	}
	return UserRef(raw)
}

// IsUser reports whether the identifier references a registered user.
func (i Identifier) IsUser() bool { return i.userID != "" }

// IsEmail reports whether the identifier is a raw email address.
func (i Identifier) IsEmail() bool { return i.email != "" }

// IsZero reports whether the identifier is empty.
func (i Identifier) IsZero() bool { return i.userID == "" && i.email == "" }

// UserID returns the user ID, or "" for email identifiers.
func (i Identifier) UserID() string { return i.userID }

// Email returns the email address, or "" for user identifiers.
func (i Identifier) Email() string { return i.email }

// String returns the raw form persisted in the store.
func (i Identifier) String() string {
	if i.userID != "" {
		return i.userID
	}
	return i.email
}

// MarshalJSON renders the identifier as its raw string form, the same shape
// the store persists.
func (i Identifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}

// UnmarshalJSON parses the raw string form back into the tagged union.
func (i *Identifier) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = ParseIdentifier(raw)
	return nil
}

// Equal reports whether two identifiers reference the same raw value.
func (i Identifier) Equal(other Identifier) bool {
	return i.userID == other.userID && i.email == other.email
}

// ContainsIdentifier reports whether ids contains target (set semantics).
func ContainsIdentifier(ids []Identifier, target Identifier) bool {
	for _, id := range ids {
		if id.Equal(target) {
			return true
		}
	}
	return false
}

// RemoveIdentifier returns ids without every occurrence of target.
func RemoveIdentifier(ids []Identifier, target Identifier) []Identifier {
	out := make([]Identifier, 0, len(ids))
	for _, id := range ids {
		if !id.Equal(target) {
			out = append(out, id)
		}
	}
	return out
}
