package handlers

import (
	"net/http"
	"testing"

	"github.com/mountbook/mountbook/internal/models"
)

func TestGetAccountSettings(t *testing.T) {
	conn := openTestDB(t)
	handler := NewAccountSettingsHandler(conn)
	user := seedUser(t, conn, "alice", models.RoleUser)
	seeded := seedSettings(t, conn, user.ID, models.TypeDragodinde)

	c, w := newTestContext(t, http.MethodGet, "/account-settings", nil, user.ID, models.RoleUser)
	handler.Get(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	var settings models.AccountSettings
	decodeBody(t, w, &settings)
	if settings.ID != seeded.ID || settings.UserID != user.ID {
		t.Fatalf("unexpected settings: %+v", settings)
	}
}

func TestGetAccountSettingsMissing(t *testing.T) {
	conn := openTestDB(t)
	handler := NewAccountSettingsHandler(conn)
	user := seedUser(t, conn, "alice", models.RoleUser)

	c, w := newTestContext(t, http.MethodGet, "/account-settings", nil, user.ID, models.RoleUser)
	handler.Get(c)
	expectErrorKind(t, w, KindNotFound)
}

func TestUpdateAccountSettingsForeignRow(t *testing.T) {
	conn := openTestDB(t)
	handler := NewAccountSettingsHandler(conn)
	owner := seedUser(t, conn, "alice", models.RoleUser)
	other := seedUser(t, conn, "bob", models.RoleUser)
	settings := seedSettings(t, conn, owner.ID, models.TypeDragodinde)

	c, w := newTestContext(t, http.MethodPut, "/account-settings/1", map[string]any{
		"igUsername": "intruder",
	}, other.ID, models.RoleUser)
	setIDParam(c, settings.ID)
	handler.Update(c)

	expectErrorKind(t, w, KindForbidden)
}

func TestUpdateAccountSettingsServerNameValidation(t *testing.T) {
	conn := openTestDB(t)
	handler := NewAccountSettingsHandler(conn)
	user := seedUser(t, conn, "alice", models.RoleUser)
	settings := seedSettings(t, conn, user.ID, models.TypeDragodinde)

	c, w := newTestContext(t, http.MethodPut, "/account-settings/1", map[string]any{
		"serverName": "Atlantis",
	}, user.ID, models.RoleUser)
	setIDParam(c, settings.ID)
	handler.Update(c)

	expectErrorKind(t, w, KindBadParameter)
	var resp struct {
		Message string `json:"message"`
	}
	decodeBody(t, w, &resp)
	if resp.Message != "serverName is invalid, the requested server doesn't exist" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}

	if errCreate := conn.Create(&models.Server{ServerName: "Atlantis"}).Error; errCreate != nil {
		t.Fatalf("seed server: %v", errCreate)
	}

	c, w = newTestContext(t, http.MethodPut, "/account-settings/1", map[string]any{
		"serverName": "Atlantis",
	}, user.ID, models.RoleUser)
	setIDParam(c, settings.ID)
	handler.Update(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	var updated models.AccountSettings
	if errFind := conn.First(&updated, settings.ID).Error; errFind != nil {
		t.Fatalf("reload settings: %v", errFind)
	}
	if updated.ServerName != "Atlantis" {
		t.Fatalf("serverName not applied: %q", updated.ServerName)
	}
}

func TestUpdateAccountSettingsPartial(t *testing.T) {
	conn := openTestDB(t)
	handler := NewAccountSettingsHandler(conn)
	user := seedUser(t, conn, "alice", models.RoleUser)
	settings := seedSettings(t, conn, user.ID, models.TypeDragodinde)

	c, w := newTestContext(t, http.MethodPut, "/account-settings/1", map[string]any{
		"mountTypes":        []string{"Dragodinde", "Volkorne"},
		"autoFillChildName": true,
	}, user.ID, models.RoleUser)
	setIDParam(c, settings.ID)
	handler.Update(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	var updated models.AccountSettings
	if errFind := conn.First(&updated, settings.ID).Error; errFind != nil {
		t.Fatalf("reload settings: %v", errFind)
	}
	if len(updated.MountTypes) != 2 || !updated.AutoFillChildName {
		t.Fatalf("partial update not applied: %+v", updated)
	}
	if updated.UserID != user.ID {
		t.Fatalf("userId must never change, got %d", updated.UserID)
	}
}

func TestUpdateAccountSettingsRejectsUnknownMountType(t *testing.T) {
	conn := openTestDB(t)
	handler := NewAccountSettingsHandler(conn)
	user := seedUser(t, conn, "alice", models.RoleUser)
	settings := seedSettings(t, conn, user.ID, models.TypeDragodinde)

	c, w := newTestContext(t, http.MethodPut, "/account-settings/1", map[string]any{
		"mountTypes": []string{"Griffon"},
	}, user.ID, models.RoleUser)
	setIDParam(c, settings.ID)
	handler.Update(c)

	expectErrorKind(t, w, KindBadParameter)
}
