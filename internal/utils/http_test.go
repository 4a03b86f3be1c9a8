package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"unauthorized", game.Unauthorized("nope"), http.StatusForbidden, "Unauthorized", "nope"},
		{"wrapped not found", fmt.Errorf("lookup: %w", game.NotFound("game 3 not found")), http.StatusNotFound, "NotFound", "game 3 not found"},
		{"conflict", game.Conflict("dup"), http.StatusConflict, "Conflict", "dup"},
		{"unauthenticated", game.ErrUnauthenticated, http.StatusUnauthorized, "Unauthenticated", "you must be logged in"},
		{"invalid", game.InvalidArgument("bad"), http.StatusBadRequest, "InvalidArgument", "bad"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "", "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			DomainError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.msg, resp.Error)
		})
	}
}

func TestSuccessResponses(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, map[string]int{"id": 1})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":1}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Message(rec, "ok")
	assert.JSONEq(t, `{"success":true,"message":"ok"}`, rec.Body.String())
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"Bearer  abc ", "abc", true},
		{"", "", false},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		token, err := BearerToken(r)
		if tt.ok {
			require.NoError(t, err, tt.header)
			assert.Equal(t, tt.token, token)
		} else {
			assert.Error(t, err, tt.header)
		}
	}
}

func TestPathID(t *testing.T) {
	r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "12", "bad": "x", "neg": "-1"})

	id, err := PathID(r, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	_, err = PathID(r, "bad")
	assert.Error(t, err)
	_, err = PathID(r, "neg")
	assert.Error(t, err)
	_, err = PathID(r, "missing")
	assert.Error(t, err)
}

func TestDecodeAndValidate(t *testing.T) {
	type body struct {
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"omitempty,email"`
	}

	t.Run("valid", func(t *testing.T) {
		var b body
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"pixel"}`))
		require.NoError(t, DecodeAndValidate(r, &b))
		assert.Equal(t, "pixel", b.Name)
	})

	t.Run("missing field", func(t *testing.T) {
		var b body
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"not-an-email"}`))
		err := DecodeAndValidate(r, &b)
		assert.EqualError(t, err, "invalid fields: Name (required), Email (email)")
	})

	t.Run("unknown field", func(t *testing.T) {
		var b body
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","admin":true}`))
		assert.ErrorContains(t, DecodeAndValidate(r, &b), "invalid JSON body")
	})
}

func TestExtractIPAndUserAgent(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	r.Header.Set("User-Agent", "pixel-app")

	ip, ua := ExtractIPAndUserAgent(r)
	assert.Equal(t, "10.0.0.1:5555", ip)
	assert.Equal(t, "pixel-app", ua)

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	ip, _ = ExtractIPAndUserAgent(r)
	assert.Equal(t, "203.0.113.7", ip)
}
