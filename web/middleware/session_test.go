package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newSessionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SessionMiddleware())
	router.GET("/probe", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"session_id": SessionID(c)})
	})
	return router
}

func TestMissingTokenMintsOne(t *testing.T) {
	router := newSessionRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	issued := w.Header().Get(SessionHeader)
	if !ValidSessionID(issued) {
		t.Fatalf("minted token is malformed: %q", issued)
	}
}

func TestValidTokenEchoedBack(t *testing.T) {
	router := newSessionRouter()
	token := NewSessionID()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(SessionHeader, token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get(SessionHeader); got != token {
		t.Fatalf("token not echoed: got %q want %q", got, token)
	}
}

func TestMalformedTokenRejected(t *testing.T) {
	router := newSessionRouter()

	for _, token := range []string{
		"garbage",
		"session_",
		"session_not-a-uuid",
		"sess_0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(SessionHeader, token)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("token %q: expected 400, got %d", token, w.Code)
		}
	}
}

func TestValidSessionID(t *testing.T) {
	if !ValidSessionID(NewSessionID()) {
		t.Fatal("freshly minted token should validate")
	}
	if ValidSessionID("") {
		t.Fatal("empty token should not validate")
	}
	if ValidSessionID("session_0f1e2d3c-4b5a-6978-8796") {
		t.Fatal("truncated uuid should not validate")
	}
}
