package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"orgchat/internal/core/domain"
)

func TestBuildFilterAdmin(t *testing.T) {
	f := BuildFilter(domain.RoleAdmin, "Engineering")
	require.True(t, f.MatchAll)
	require.Empty(t, f.Terms)
	require.True(t, f.Matches(map[string]string{"department": "Finance"}))
}

func TestBuildFilterManager(t *testing.T) {
	f := BuildFilter(domain.RoleManager, "Engineering")
	require.False(t, f.MatchAll)
	require.Equal(t, map[string]string{"department": "Engineering"}, f.Terms)

	require.True(t, f.Matches(map[string]string{"department": "Engineering", "record_kind": "employee"}))
	require.True(t, f.Matches(map[string]string{"department": "Engineering", "record_kind": "report"}))
	require.False(t, f.Matches(map[string]string{"department": "Finance", "record_kind": "employee"}))
}

func TestBuildFilterEmployee(t *testing.T) {
	f := BuildFilter(domain.RoleEmployee, "Finance")
	require.Equal(t, map[string]string{
		"department":  "Finance",
		"record_kind": "employee",
	}, f.Terms)

	require.True(t, f.Matches(map[string]string{"department": "Finance", "record_kind": "employee"}))
	require.False(t, f.Matches(map[string]string{"department": "Finance", "record_kind": "report"}))
	require.False(t, f.Matches(map[string]string{"department": "Engineering", "record_kind": "employee"}))
}

func TestBuildFilterUnknownRoleIsLeastPrivilege(t *testing.T) {
	f := BuildFilter(domain.Role("contractor"), "Sales")
	require.Equal(t, BuildFilter(domain.RoleEmployee, "Sales"), f)
}

func TestBuildFilterDeterministic(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleEmployee, domain.RoleManager, domain.RoleAdmin} {
		a := BuildFilter(role, "Engineering")
		b := BuildFilter(role, "Engineering")
		require.Equal(t, a, b, "filter for %s must be deterministic", role)
	}
}

func TestForbiddenTerms(t *testing.T) {
	require.ElementsMatch(t,
		[]string{"team salaries", "employee directory", "payroll", "salary", "wage"},
		ForbiddenTerms(domain.RoleEmployee),
	)
	require.Empty(t, ForbiddenTerms(domain.RoleManager))
	require.Empty(t, ForbiddenTerms(domain.RoleAdmin))
	require.ElementsMatch(t, ForbiddenTerms(domain.RoleEmployee), ForbiddenTerms(domain.Role("unknown")))
}

func TestCheckQueryDeniesEmployeePayroll(t *testing.T) {
	d := CheckQuery(domain.RoleEmployee, "what is my team's payroll total")
	require.False(t, d.Allowed)
	require.Equal(t, "payroll", d.Term)
	require.Contains(t, d.Reason, "employee")
}

func TestCheckQueryAllowsManagerSameText(t *testing.T) {
	d := CheckQuery(domain.RoleManager, "what is my team's payroll total")
	require.True(t, d.Allowed)
}

func TestCheckQueryCaseInsensitive(t *testing.T) {
	d := CheckQuery(domain.RoleEmployee, "Show me the EMPLOYEE DIRECTORY please")
	require.False(t, d.Allowed)
	require.Equal(t, "employee directory", d.Term)
}

func TestCheckQueryAllowsBenignQuestion(t *testing.T) {
	d := CheckQuery(domain.RoleEmployee, "how many vacation days do I have left")
	require.True(t, d.Allowed)
	require.Empty(t, d.Term)
}
