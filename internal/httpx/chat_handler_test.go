package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestSendMessageAdminSenderRequiresAdminRole(t *testing.T) {
	r := chi.NewRouter()
	(&ChatHandler{}).Register(r)

	post := func(role string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/chats/u1/messages",
			strings.NewReader(`{"sender":"admin","text":"hello"}`))
		if role != "" {
			req.Header.Set("X-Role", role)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusForbidden, post("").Code)
	assert.Equal(t, http.StatusForbidden, post("customer").Code)
}
