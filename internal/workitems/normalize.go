package workitems

import (
	"strings"
	"time"

	"github.com/worklens/worklens-backend/internal/docstore"
	"github.com/worklens/worklens-backend/internal/model"
)

// rulePriorityMap translates localized rule priorities to the canonical
// vocabulary. Unknown values pass through unchanged.
var rulePriorityMap = map[string]string{
	"必須": "mandatory",
	"高":  "high",
	"中":  "normal",
	"低":  "low",
}

// normalizeRules maps each rule to a {content, priority} pair with the
// priority translated to canonical form, defaulting to "normal".
func normalizeRules(rules []model.RuleInput) []any {
	out := make([]any, 0, len(rules))
	for _, r := range rules {
		p := r.Priority
		if p == "" {
			p = "normal"
		}
		if mapped, ok := rulePriorityMap[p]; ok {
			p = mapped
		}
		out = append(out, docstore.Fields{"content": r.Content, "priority": p})
	}
	return out
}

// normalizeNewMembers converts member inputs into stored member entries. A
// bare identity (email only) gets its role synthesized from ownership; an
// entry that carries any role information keeps it, defaulting the role to
// Engineer. Identities without an "@" cannot form a user reference and are
// dropped.
func normalizeNewMembers(members []model.MemberInput, ownerEmail string) []any {
	out := make([]any, 0, len(members))
	for _, m := range members {
		if m == (model.MemberInput{}) {
			continue
		}
		entry := docstore.Fields{}
		if m.Role == "" && m.RoleDetails == "" && !m.IsOwner {
			isOwner := m.Email == ownerEmail
			entry["isOwner"] = isOwner
			if isOwner {
				entry["role"] = "Owner"
			} else {
				entry["role"] = "Engineer"
			}
			entry["roleDetails"] = ""
		} else {
			role := m.Role
			if role == "" {
				role = "Engineer"
			}
			entry["isOwner"] = m.IsOwner
			entry["role"] = role
			entry["roleDetails"] = m.RoleDetails
		}
		if !strings.Contains(m.Email, "@") {
			continue
		}
		entry["userRef"] = docstore.NewRef(docstore.JoinPath(usersCollection, m.Email))
		out = append(out, entry)
	}
	return out
}

// normalizeMemberPatch re-normalizes a replacement member list on update:
// empty entries are skipped, supplied role fields pass through as-is and the
// identity is converted to a user reference under the same "@" gate as create.
func normalizeMemberPatch(members []model.MemberInput) []any {
	out := make([]any, 0, len(members))
	for _, m := range members {
		if m == (model.MemberInput{}) {
			continue
		}
		if !strings.Contains(m.Email, "@") {
			continue
		}
		out = append(out, docstore.Fields{
			"role":        m.Role,
			"roleDetails": m.RoleDetails,
			"isOwner":     m.IsOwner,
			"userRef":     docstore.NewRef(docstore.JoinPath(usersCollection, m.Email)),
		})
	}
	return out
}

// instantLayouts are the accepted date/timestamp forms, tried in order.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseInstant parses an optional ISO-8601 date or timestamp. Empty and
// malformed inputs report ok=false so callers can omit the field.
func parseInstant(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
