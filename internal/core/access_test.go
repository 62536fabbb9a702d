package core

import (
	"resourcecatalog/pkg/domain"
	"testing"
)

type adminSet map[domain.Identity]bool

func (a adminSet) IsAdmin(id domain.Identity) bool { return a[id] }

func TestAccessPredicates(t *testing.T) {
	admins := adminSet{"root": true}
	record := domain.Resource{ID: 1, CreatedBy: "alice"}
	cases := []struct {
		caller      domain.Identity
		admin, edit bool
	}{
		{"root", true, true},
		{"alice", false, true},
		{"mallory", false, false},
		{domain.AnonymousIdentity, false, false},
	}
	for _, tc := range cases {
		if got := IsAdmin(admins, tc.caller); got != tc.admin {
			t.Fatalf("%s: IsAdmin=%v", tc.caller, got)
		}
		if got := IsOwnerOrAdmin(admins, tc.caller, record); got != tc.edit {
			t.Fatalf("%s: IsOwnerOrAdmin=%v", tc.caller, got)
		}
	}
}
