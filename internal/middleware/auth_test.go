package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tubeaccounts/backend/internal/utils"
)

var testSecret = []byte("test-secret-for-middleware-testing")

func init() {
	gin.SetMode(gin.TestMode)
}

type secretVerifier []byte

func (s secretVerifier) VerifyAccess(token string) (*utils.Claims, error) {
	return utils.ParseToken(token, s)
}

func protectedRouter() *gin.Engine {
	router := gin.New()
	router.Use(AuthRequired(secretVerifier(testSecret)))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"user_id":  GetUserID(c),
			"username": GetUsername(c),
		})
	})
	return router
}

func validToken(t *testing.T) string {
	t.Helper()
	token, _, err := utils.GenerateToken(utils.Claims{UserID: 1, Username: "testuser"}, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func TestAuthRequired_NoToken(t *testing.T) {
	router := protectedRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body["success"] != false || body["message"] != "Unauthorized request" {
		t.Errorf("unexpected failure envelope: %v", body)
	}
}

func TestAuthRequired_InvalidFormat(t *testing.T) {
	router := protectedRouter()

	testCases := []string{
		"InvalidToken",
		"Basic token123",
		"Bearer",
	}

	for _, authHeader := range testCases {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", authHeader)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected status %d, got %d", authHeader, http.StatusUnauthorized, w.Code)
		}
	}
}

func TestAuthRequired_InvalidToken(t *testing.T) {
	router := protectedRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer invalid.jwt.token")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthRequired_WrongSecret(t *testing.T) {
	token, _, err := utils.GenerateToken(utils.Claims{UserID: 1}, []byte("other-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	router := protectedRouter()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthRequired_BearerToken(t *testing.T) {
	router := protectedRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+validToken(t))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var body struct {
		UserID   uint   `json:"user_id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.UserID != 1 || body.Username != "testuser" {
		t.Errorf("unexpected identity in context: %+v", body)
	}
}

func TestAuthRequired_CookieToken(t *testing.T) {
	router := protectedRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: validToken(t)})
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestAuthRequired_CookieWinsOverHeader(t *testing.T) {
	router := protectedRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: validToken(t)})
	req.Header.Set("Authorization", "Bearer invalid.jwt.token")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestGetUserID_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if GetUserID(c) != 0 {
		t.Error("GetUserID should be 0 without auth")
	}
	if GetUsername(c) != "" {
		t.Error("GetUsername should be empty without auth")
	}
}
