// Package policy is the single definition site for the RBAC rules: which
// slice of the employee index a principal may retrieve from, and which query
// terms a role is forbidden to ask about. Both functions are pure and take
// no dependencies, so the security boundary can be tested and audited in
// isolation. No other package may hard-code role rules.
package policy

import (
	"fmt"
	"strings"

	"orgchat/internal/core/domain"
)

// Metadata field names in the employee index.
const (
	FieldDepartment = "department"
	FieldRecordKind = "record_kind"
)

// RecordKindEmployee is the record_kind value of per-employee records.
const RecordKindEmployee = "employee"

// AccessFilter is a hard constraint over document metadata. The retrieval
// backend must treat it as a filter, never as a ranking hint.
type AccessFilter struct {
	// MatchAll grants unrestricted retrieval. Terms is empty when set.
	MatchAll bool
	// Terms maps metadata field -> exact required value. A document must
	// satisfy every entry.
	Terms map[string]string
}

// Matches reports whether document metadata satisfies the filter.
func (f AccessFilter) Matches(meta map[string]string) bool {
	if f.MatchAll {
		return true
	}
	for field, want := range f.Terms {
		if meta[field] != want {
			return false
		}
	}
	return true
}

// BuildFilter maps (role, department) to the maximal retrieval filter for
// that principal. Pure and total: unknown roles fall through to the
// employee arm, the least-privilege option.
func BuildFilter(role domain.Role, department string) AccessFilter {
	switch role {
	case domain.RoleAdmin:
		return AccessFilter{MatchAll: true}
	case domain.RoleManager:
		return AccessFilter{Terms: map[string]string{
			FieldDepartment: department,
		}}
	default:
		return AccessFilter{Terms: map[string]string{
			FieldDepartment: department,
			FieldRecordKind: RecordKindEmployee,
		}}
	}
}

// forbiddenTerms holds the per-role denial lists, lowercase.
var forbiddenTerms = map[domain.Role][]string{
	domain.RoleEmployee: {
		"team salaries",
		"employee directory",
		"payroll",
		"salary",
		"wage",
	},
	domain.RoleManager: {},
	domain.RoleAdmin:   {},
}

// ForbiddenTerms returns the denial list for a role. Unknown roles get the
// employee list.
func ForbiddenTerms(role domain.Role) []string {
	if terms, ok := forbiddenTerms[role]; ok {
		return terms
	}
	return forbiddenTerms[domain.RoleEmployee]
}

// Decision is the outcome of CheckQuery.
type Decision struct {
	Allowed bool
	// Term is the forbidden term that triggered denial.
	Term string
	// Reason is a human-readable denial message.
	Reason string
}

// CheckQuery tests the question text against the role's forbidden terms with
// a case-insensitive substring match. It must run before any retrieval or
// generation call: a denied query never reaches the index, so retrieval
// timing cannot leak whether a term matched anything.
func CheckQuery(role domain.Role, question string) Decision {
	lowered := strings.ToLower(question)
	for _, term := range ForbiddenTerms(role) {
		if strings.Contains(lowered, term) {
			return Decision{
				Allowed: false,
				Term:    term,
				Reason: fmt.Sprintf(
					"Access Denied — Your role (%s) does not permit this query. Please contact your administrator for access to this information.",
					role,
				),
			}
		}
	}
	return Decision{Allowed: true}
}
