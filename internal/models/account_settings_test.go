package models

import "testing"

func TestAllowsMountType(t *testing.T) {
	settings := &AccountSettings{MountTypes: []MountType{TypeDragodinde, TypeVolkorne}}

	if !settings.AllowsMountType(TypeDragodinde) {
		t.Fatal("Dragodinde should be allowed")
	}
	if settings.AllowsMountType(TypeMuldo) {
		t.Fatal("Muldo was never opted into")
	}

	empty := &AccountSettings{}
	if empty.AllowsMountType(TypeDragodinde) {
		t.Fatal("empty settings allow nothing")
	}
}

func TestUserRoleValid(t *testing.T) {
	if !RoleUser.Valid() || !RoleAdmin.Valid() {
		t.Fatal("known roles should be valid")
	}
	if UserRole("admin").Valid() || UserRole("").Valid() {
		t.Fatal("unknown roles should be invalid")
	}
}
