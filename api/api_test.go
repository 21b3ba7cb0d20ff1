package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"economic/database"
	"economic/middleware"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = gormDB
	return mock, func() {
		database.DB = oldDB
		sqlDB.Close()
	}
}

func setUserIDMiddleware(userID string, roles ...string) gin.HandlerFunc {
	if len(roles) == 0 {
		roles = []string{"user"}
	}
	return func(c *gin.Context) {
		middleware.SetCurrentUser(c, userID, roles)
		c.Next()
	}
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

var userColumns = []string{"id", "email", "password", "first_name", "last_name", "roles",
	"phone", "address", "birth_date", "picture_url", "created_at", "updated_at"}

func userRow(rows *sqlmock.Rows, id, email, password, roles string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, email, password, "Jane", "Doe", roles, nil, nil, nil, nil, now, now)
}

var categoryColumns = []string{"id", "user_id", "name", "type", "created_at", "updated_at", "deleted_at"}

var transactionColumns = []string{"id", "user_id", "kind", "amount", "category_id", "description", "date",
	"created_at", "updated_at", "deleted_at"}
