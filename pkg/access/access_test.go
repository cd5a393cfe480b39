package access

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in  string
		out Role
	}{
		{"", -1},
		{"foo", -1},
		{"Counselor", Advisor},
		{Admin.String(), Admin},
		{Student.String(), Student},
		{Advisor.String(), Advisor},
		{Organization.String(), Organization},
		{Anonymous.String(), Anonymous},
	}

	for _, c := range cases {
		out := ParseRole(c.in)
		if out != c.out {
			t.Errorf("ParseRole(%q) => %d, want %d", c.in, out, c.out)
		}
	}
}

func TestCan(t *testing.T) {
	cases := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{Anonymous, LogActivities, false},
		{Student, LogActivities, true},
		{Student, ViewAnalytics, false},
		{Advisor, ViewAnalytics, true},
		{Advisor, ManageAdvisoryGroups, true},
		{Advisor, ManageSettings, false},
		{Organization, ManageOpportunities, true},
		{Organization, VerifyActivities, false},
		{Admin, ManageSettings, true},
		{Admin, LogActivities, true},
	}

	for _, c := range cases {
		if got := c.role.Can(c.cap); got != c.want {
			t.Errorf("%s.Can(%s) => %t, want %t", c.role, c.cap, got, c.want)
		}
	}
}

func TestRoleText(t *testing.T) {
	is := is.New(t)
	var v struct {
		Role Role `json:"role"`
	}
	is.NoErr(json.Unmarshal([]byte(`{"role":"advisor"}`), &v))
	is.Equal(v.Role, Advisor)

	out, err := json.Marshal(v)
	is.NoErr(err)
	is.Equal(string(out), `{"role":"advisor"}`)

	is.True(json.Unmarshal([]byte(`{"role":"root"}`), &v) != nil)
}
