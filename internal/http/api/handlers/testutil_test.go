package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	dbpkg "github.com/mountbook/mountbook/internal/db"
	"github.com/mountbook/mountbook/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, errOpen := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

// newTestContext builds a gin context carrying a JSON body and the
// identity of the acting user.
func newTestContext(t *testing.T, method, target string, body any, userID uint64, role models.UserRole) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		data, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal body: %v", errMarshal)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")

	if userID != 0 {
		c.Set(ContextUserIDKey, userID)
		c.Set(ContextUserRoleKey, role)
	}
	return c, w
}

func setIDParam(c *gin.Context, id uint64) {
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(id, 10)}}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if errDecode := json.Unmarshal(w.Body.Bytes(), out); errDecode != nil {
		t.Fatalf("decode response: %v body=%s", errDecode, w.Body.String())
	}
}

// expectErrorKind asserts the structured error body.
func expectErrorKind(t *testing.T, w *httptest.ResponseRecorder, kind ErrorKind) {
	t.Helper()
	if w.Code != kind.status() {
		t.Fatalf("expected status %d, got %d body=%s", kind.status(), w.Code, w.Body.String())
	}
	var resp struct {
		ErrorType string `json:"errorType"`
	}
	decodeBody(t, w, &resp)
	if resp.ErrorType != string(kind) {
		t.Fatalf("expected errorType %s, got %s", kind, resp.ErrorType)
	}
}

func seedUser(t *testing.T, conn *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     role,
	}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("seed user: %v", errCreate)
	}
	return &user
}

func seedSettings(t *testing.T, conn *gorm.DB, userID uint64, types ...models.MountType) *models.AccountSettings {
	t.Helper()
	settings := models.AccountSettings{
		UserID:     userID,
		MountTypes: types,
	}
	if errCreate := conn.Create(&settings).Error; errCreate != nil {
		t.Fatalf("seed settings: %v", errCreate)
	}
	return &settings
}

func seedColor(t *testing.T, conn *gorm.DB, mountType models.MountType) *models.MountColor {
	t.Helper()
	color := models.MountColor{
		Color:     datatypes.NewJSONType(models.ColorLocalize{En: "Almond", Fr: "Amande"}),
		MountType: mountType,
	}
	if errCreate := conn.Create(&color).Error; errCreate != nil {
		t.Fatalf("seed color: %v", errCreate)
	}
	return &color
}

func seedMount(t *testing.T, conn *gorm.DB, userID, colorID uint64, name string, gender models.MountGender, mountType models.MountType, maxChildren, children int) *models.Mount {
	t.Helper()
	mount := models.Mount{
		Name:             name,
		Gender:           gender,
		ColorID:          colorID,
		Color:            datatypes.NewJSONType(models.ColorLocalize{En: "Almond", Fr: "Amande"}),
		Type:             mountType,
		UserID:           userID,
		MaxNumberOfChild: maxChildren,
		NumberOfChild:    children,
	}
	if errCreate := conn.Create(&mount).Error; errCreate != nil {
		t.Fatalf("seed mount: %v", errCreate)
	}
	return &mount
}

func reloadMount(t *testing.T, conn *gorm.DB, id uint64) *models.Mount {
	t.Helper()
	var mount models.Mount
	if errFind := conn.First(&mount, id).Error; errFind != nil {
		t.Fatalf("reload mount %d: %v", id, errFind)
	}
	return &mount
}

func countRows(t *testing.T, conn *gorm.DB, model any) int64 {
	t.Helper()
	var count int64
	if errCount := conn.Model(model).Count(&count).Error; errCount != nil {
		t.Fatalf("count rows: %v", errCount)
	}
	return count
}
