package models

import (
	"strings"

	"github.com/taskbridge/clickup-mcp/internal/resolve"
	"github.com/taskbridge/clickup-mcp/internal/upstream"
)

// MemberRecord is a workspace member with every searchable fact harvested
// into identifiers. The raw payload is retained for callers that need fields
// normalization dropped.
type MemberRecord struct {
	ID          string               `json:"id"`
	DisplayName string               `json:"displayName"`
	Email       string               `json:"email,omitempty"`
	Username    string               `json:"username,omitempty"`
	Identifiers []resolve.Identifier `json:"identifiers"`
	Keywords    []string             `json:"keywords,omitempty"`
	Raw         upstream.Record      `json:"-"`
}

// NormalizeMember converts a raw member payload into a MemberRecord. Member
// payloads usually nest the interesting fields under "user"; some endpoints
// return them flat. A payload without an id yields ok=false.
func NormalizeMember(raw upstream.Record) (MemberRecord, bool) {
	if raw == nil {
		return MemberRecord{}, false
	}
	user := raw.Sub("user")
	if user == nil {
		user = raw
	}

	id := user.Str("id", "user_id", "userId")
	if id == "" {
		id = raw.Str("id", "user_id", "userId")
	}
	if id == "" {
		return MemberRecord{}, false
	}

	rec := MemberRecord{
		ID:          id,
		DisplayName: user.Str("username", "name", "display_name", "displayName"),
		Email:       user.Str("email"),
		Username:    user.Str("username"),
		Raw:         raw,
	}

	identifiers := []resolve.Identifier{
		resolve.NewIdentifier(id, "id"),
		resolve.NewIdentifier(user.Str("username"), "username"),
		resolve.NewIdentifier(user.Str("email"), "email"),
		resolve.NewIdentifier(user.Str("name", "display_name", "displayName"), "name"),
		resolve.NewIdentifier(user.Str("initials"), "initials"),
	}
	// Email local part is a common way people refer to each other.
	if email := user.Str("email"); email != "" {
		if at := strings.IndexByte(email, '@'); at > 0 {
			identifiers = append(identifiers, resolve.NewIdentifier(email[:at], "email-local"))
		}
	}
	if profile := user.Sub("profileInfo", "profile_info", "profile"); profile != nil {
		identifiers = append(identifiers,
			resolve.NewIdentifier(profile.Str("display_profile", "displayProfile"), "profile"),
			resolve.NewIdentifier(profile.Str("nickname"), "nickname"),
		)
	}
	rec.Identifiers = resolve.DedupeIdentifiers(identifiers)

	for _, kw := range []string{user.Str("role_key", "roleKey", "role"), user.Str("title"), user.Str("timezone")} {
		if kw != "" {
			rec.Keywords = append(rec.Keywords, kw)
		}
	}

	if rec.DisplayName == "" {
		rec.DisplayName = rec.Email
	}
	if rec.DisplayName == "" {
		rec.DisplayName = rec.ID
	}
	return rec, true
}

// Entry converts the record into a resolver entry. Display name carries the
// most weight, then email, then username and keywords.
func (m MemberRecord) Entry() resolve.Entry {
	fuzzy := []resolve.WeightedField{
		{Name: "name", Value: m.DisplayName, Weight: 1.0},
		{Name: "email", Value: m.Email, Weight: 0.8},
		{Name: "username", Value: m.Username, Weight: 0.6},
	}
	for _, kw := range m.Keywords {
		fuzzy = append(fuzzy, resolve.WeightedField{Name: "keyword", Value: kw, Weight: 0.6})
	}
	return resolve.Entry{
		ID:          m.ID,
		DisplayName: m.DisplayName,
		Identifiers: m.Identifiers,
		Fuzzy:       fuzzy,
	}
}
