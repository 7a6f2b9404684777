package handlers

import (
	"net/http"
	"testing"

	"github.com/mountbook/mountbook/internal/config"
	"github.com/mountbook/mountbook/internal/models"
	"github.com/mountbook/mountbook/internal/security"
)

func TestRegisterCreatesUserAndSettings(t *testing.T) {
	conn := openTestDB(t)
	handler := NewAuthHandler(conn, config.JWTConfig{Secret: "test-secret", Issuer: "mountbook"}, 4)

	c, w := newTestContext(t, http.MethodPost, "/users", map[string]any{
		"username":   "alice",
		"email":      "alice@example.com",
		"password":   "hunter22",
		"mountTypes": []string{"Dragodinde"},
	}, 0, "")
	handler.Register(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Username string `json:"username"`
		Token    string `json:"token"`
	}
	decodeBody(t, w, &resp)
	if resp.Username != "alice" {
		t.Fatalf("expected username alice, got %q", resp.Username)
	}
	if resp.Token == "" {
		t.Fatal("expected a signed token")
	}

	var user models.User
	if errFind := conn.Where("username = ?", "alice").First(&user).Error; errFind != nil {
		t.Fatalf("user not persisted: %v", errFind)
	}
	if user.Role != models.RoleUser {
		t.Fatalf("expected default role User, got %s", user.Role)
	}
	if user.Password == "hunter22" {
		t.Fatal("password stored in clear")
	}
	if !security.CheckPassword(user.Password, "hunter22") {
		t.Fatal("stored hash does not verify")
	}

	var settings models.AccountSettings
	if errFind := conn.Where("user_id = ?", user.ID).First(&settings).Error; errFind != nil {
		t.Fatalf("settings row not created: %v", errFind)
	}
	if len(settings.MountTypes) != 1 || settings.MountTypes[0] != models.TypeDragodinde {
		t.Fatalf("unexpected mountTypes: %v", settings.MountTypes)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	conn := openTestDB(t)
	handler := NewAuthHandler(conn, config.JWTConfig{Secret: "test-secret", Issuer: "mountbook"}, 4)
	seedUser(t, conn, "alice", models.RoleUser)

	c, w := newTestContext(t, http.MethodPost, "/users", map[string]any{
		"username": "alice",
		"email":    "other@example.com",
		"password": "hunter22",
	}, 0, "")
	handler.Register(c)

	expectErrorKind(t, w, KindCannotInsert)
	if got := countRows(t, conn, &models.User{}); got != 1 {
		t.Fatalf("expected 1 user after rejected duplicate, got %d", got)
	}
	if got := countRows(t, conn, &models.AccountSettings{}); got != 0 {
		t.Fatalf("expected no settings rows, got %d", got)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	conn := openTestDB(t)
	handler := NewAuthHandler(conn, config.JWTConfig{Secret: "test-secret", Issuer: "mountbook"}, 4)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"username", map[string]any{"email": "a@example.com", "password": "x"}},
		{"email", map[string]any{"username": "a", "password": "x"}},
		{"password", map[string]any{"username": "a", "email": "a@example.com"}},
	}
	for _, tc := range cases {
		c, w := newTestContext(t, http.MethodPost, "/users", tc.body, 0, "")
		handler.Register(c)
		expectErrorKind(t, w, KindUndefinedParameter)
		var resp struct {
			Message string `json:"message"`
		}
		decodeBody(t, w, &resp)
		if resp.Message != "Undefined parameter: "+tc.name {
			t.Fatalf("unexpected message for %s: %q", tc.name, resp.Message)
		}
	}
}

func TestRegisterRejectsUnknownMountType(t *testing.T) {
	conn := openTestDB(t)
	handler := NewAuthHandler(conn, config.JWTConfig{Secret: "test-secret", Issuer: "mountbook"}, 4)

	c, w := newTestContext(t, http.MethodPost, "/users", map[string]any{
		"username":   "alice",
		"email":      "alice@example.com",
		"password":   "hunter22",
		"mountTypes": []string{"Griffon"},
	}, 0, "")
	handler.Register(c)

	expectErrorKind(t, w, KindBadParameter)
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	conn := openTestDB(t)
	handler := NewAuthHandler(conn, config.JWTConfig{Secret: "test-secret", Issuer: "mountbook"}, 4)

	hash, errHash := security.HashPassword("hunter22", 4)
	if errHash != nil {
		t.Fatalf("hash: %v", errHash)
	}
	user := models.User{Username: "alice", Email: "alice@example.com", Password: hash, Role: models.RoleUser}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("seed user: %v", errCreate)
	}

	for _, login := range []string{"alice", "alice@example.com"} {
		c, w := newTestContext(t, http.MethodPost, "/users/login", map[string]any{
			"username": login,
			"password": "hunter22",
		}, 0, "")
		handler.Login(c)
		if w.Code != http.StatusOK {
			t.Fatalf("login with %q: expected 200, got %d body=%s", login, w.Code, w.Body.String())
		}
	}
}

func TestLoginWrongPasswordLooksLikeMissingUser(t *testing.T) {
	conn := openTestDB(t)
	handler := NewAuthHandler(conn, config.JWTConfig{Secret: "test-secret", Issuer: "mountbook"}, 4)

	hash, _ := security.HashPassword("hunter22", 4)
	user := models.User{Username: "alice", Email: "alice@example.com", Password: hash, Role: models.RoleUser}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("seed user: %v", errCreate)
	}

	cases := []map[string]any{
		{"username": "alice", "password": "wrong"},
		{"username": "nobody", "password": "hunter22"},
	}
	for _, body := range cases {
		c, w := newTestContext(t, http.MethodPost, "/users/login", body, 0, "")
		handler.Login(c)
		expectErrorKind(t, w, KindNotFound)
		var resp struct {
			Message string `json:"message"`
		}
		decodeBody(t, w, &resp)
		if resp.Message != "No user was found for the given credentials" {
			t.Fatalf("unexpected message: %q", resp.Message)
		}
	}
}

func TestValidateProperty(t *testing.T) {
	conn := openTestDB(t)
	handler := NewAuthHandler(conn, config.JWTConfig{Secret: "test-secret", Issuer: "mountbook"}, 4)
	seedUser(t, conn, "alice", models.RoleUser)

	cases := []struct {
		target string
		exist  bool
	}{
		{"/users/validate?property=username&value=alice", true},
		{"/users/validate?property=username&value=bob", false},
		{"/users/validate?property=email&value=alice@example.com", true},
	}
	for _, tc := range cases {
		c, w := newTestContext(t, http.MethodGet, tc.target, nil, 0, "")
		handler.Validate(c)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.target, w.Code)
		}
		var resp struct {
			Exist bool `json:"exist"`
		}
		decodeBody(t, w, &resp)
		if resp.Exist != tc.exist {
			t.Fatalf("%s: expected exist=%v, got %v", tc.target, tc.exist, resp.Exist)
		}
	}

	c, w := newTestContext(t, http.MethodGet, "/users/validate?property=role&value=Admin", nil, 0, "")
	handler.Validate(c)
	expectErrorKind(t, w, KindBadParameter)
}
