package core

import "resourcecatalog/pkg/domain"

// adminView is the slice of a transaction view that access control needs.
type adminView interface {
	IsAdmin(id domain.Identity) bool
}

// IsAdmin reports admin-set membership. Delete and verify require it.
func IsAdmin(view adminView, caller domain.Identity) bool {
	return view.IsAdmin(caller)
}

// IsOwnerOrAdmin gates edits: the creator of a record or any admin may update it.
func IsOwnerOrAdmin(view adminView, caller domain.Identity, r domain.Resource) bool {
	return caller == r.CreatedBy || IsAdmin(view, caller)
}
