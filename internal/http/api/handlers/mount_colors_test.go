package handlers

import (
	"net/http"
	"testing"

	"github.com/mountbook/mountbook/internal/models"
)

func TestCreateMountColor(t *testing.T) {
	conn := openTestDB(t)
	handler := NewMountColorHandler(conn, nil)
	admin := seedUser(t, conn, "root", models.RoleAdmin)

	c, w := newTestContext(t, http.MethodPost, "/mounts/colors", map[string]any{
		"color":     map[string]string{"en": "Almond", "fr": "Amande"},
		"mountType": "Dragodinde",
	}, admin.ID, models.RoleAdmin)
	handler.Create(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
	}
	var stored models.MountColor
	if errFind := conn.First(&stored).Error; errFind != nil {
		t.Fatalf("color not persisted: %v", errFind)
	}
	if stored.Color.Data().Fr != "Amande" {
		t.Fatalf("unexpected color payload: %+v", stored.Color.Data())
	}
}

func TestCreateMountColorValidation(t *testing.T) {
	conn := openTestDB(t)
	handler := NewMountColorHandler(conn, nil)
	admin := seedUser(t, conn, "root", models.RoleAdmin)

	c, w := newTestContext(t, http.MethodPost, "/mounts/colors", map[string]any{
		"mountType": "Dragodinde",
	}, admin.ID, models.RoleAdmin)
	handler.Create(c)
	expectErrorKind(t, w, KindUndefinedParameter)

	c, w = newTestContext(t, http.MethodPost, "/mounts/colors", map[string]any{
		"color":     map[string]string{"en": "Almond", "fr": "Amande"},
		"mountType": "Griffon",
	}, admin.ID, models.RoleAdmin)
	handler.Create(c)
	expectErrorKind(t, w, KindBadParameter)
}

func TestUpdateMountColorMissing(t *testing.T) {
	conn := openTestDB(t)
	handler := NewMountColorHandler(conn, nil)
	admin := seedUser(t, conn, "root", models.RoleAdmin)

	c, w := newTestContext(t, http.MethodPut, "/mounts/colors/1", map[string]any{
		"color":     map[string]string{"en": "Almond", "fr": "Amande"},
		"mountType": "Dragodinde",
	}, admin.ID, models.RoleAdmin)
	setIDParam(c, 42)
	handler.Update(c)

	expectErrorKind(t, w, KindNotFound)
}

func TestListColorsGroupedByType(t *testing.T) {
	conn := openTestDB(t)
	handler := NewMountColorHandler(conn, nil)

	seedColor(t, conn, models.TypeMuldo)
	seedColor(t, conn, models.TypeDragodinde)
	seedColor(t, conn, models.TypeDragodinde)

	c, w := newTestContext(t, http.MethodGet, "/mounts/colors", nil, 0, "")
	handler.ListGroupedByType(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	var groups []struct {
		Type   models.MountType    `json:"type"`
		Colors []models.MountColor `json:"colors"`
	}
	decodeBody(t, w, &groups)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Type != models.TypeDragodinde || len(groups[0].Colors) != 2 {
		t.Fatalf("unexpected first group: %+v", groups[0])
	}
	if groups[1].Type != models.TypeMuldo || len(groups[1].Colors) != 1 {
		t.Fatalf("unexpected second group: %+v", groups[1])
	}
}

func TestListColorsGroupedEmpty(t *testing.T) {
	conn := openTestDB(t)
	handler := NewMountColorHandler(conn, nil)

	c, w := newTestContext(t, http.MethodGet, "/mounts/colors", nil, 0, "")
	handler.ListGroupedByType(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); body != "[]" {
		t.Fatalf("expected empty array, got %s", body)
	}
}

func TestDeleteMountColor(t *testing.T) {
	conn := openTestDB(t)
	handler := NewMountColorHandler(conn, nil)
	admin := seedUser(t, conn, "root", models.RoleAdmin)
	color := seedColor(t, conn, models.TypeDragodinde)

	c, w := newTestContext(t, http.MethodDelete, "/mounts/colors/1", nil, admin.ID, models.RoleAdmin)
	setIDParam(c, color.ID)
	handler.Delete(c)
	c.Writer.WriteHeaderNow()

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d body=%s", w.Code, w.Body.String())
	}
	if got := countRows(t, conn, &models.MountColor{}); got != 0 {
		t.Fatalf("expected 0 colors, got %d", got)
	}
}
