package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wanderstay/wanderstay/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestErrorResponse_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid", domain.Invalid("Op", "Bad input"), http.StatusBadRequest},
		{"unauthorized", domain.Unauthorized("Op", "Sign in"), http.StatusUnauthorized},
		{"forbidden", domain.Forbidden("Op", "Not yours"), http.StatusForbidden},
		{"not found", domain.NotFound("Op", "booking", "x"), http.StatusNotFound},
		{"conflict", domain.Conflict("Op", "Already exists"), http.StatusConflict},
		{"internal", domain.Internal(nil, "Op", "Something broke"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ErrorResponse(rec, httptest.NewRequest("GET", "/test", nil), testLogger(), tt.err)

			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected application/json, got %s", ct)
			}
		})
	}
}

func TestErrorResponse_InternalHidesDetails(t *testing.T) {
	dbErr := domain.Errorf(domain.EINTERNAL, "Repository.GetUser", "pq: relation \"users\" does not exist")
	internalErr := domain.Internal(dbErr, "UserService.GetByID", "Failed to retrieve user")

	rec := httptest.NewRecorder()
	ErrorResponse(rec, httptest.NewRequest("GET", "/me", nil), testLogger(), internalErr)

	body := rec.Body.String()
	if strings.Contains(body, "pq:") {
		t.Errorf("response exposes database error: %s", body)
	}
	if strings.Contains(body, "Repository") || strings.Contains(body, "UserService") {
		t.Errorf("response exposes internal operation name: %s", body)
	}
}

func TestErrorResponse_ValidationFields(t *testing.T) {
	ve := domain.NewValidationError("PropertyService.Create", "title", "Title is required")
	domain.AddFieldError(ve, "price_per_night", "Price must be positive")

	rec := httptest.NewRecorder()
	ErrorResponse(rec, httptest.NewRequest("POST", "/properties", nil), testLogger(), ve)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body struct {
		Error struct {
			Code    string            `json:"code"`
			Message string            `json:"message"`
			Fields  map[string]string `json:"fields"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if body.Error.Code != domain.EINVALID {
		t.Errorf("expected code %s, got %s", domain.EINVALID, body.Error.Code)
	}
	if body.Error.Fields["title"] != "Title is required" {
		t.Errorf("missing title field error: %v", body.Error.Fields)
	}
	if body.Error.Fields["price_per_night"] != "Price must be positive" {
		t.Errorf("missing price field error: %v", body.Error.Fields)
	}
	if strings.Contains(body.Error.Message, "PropertyService") {
		t.Errorf("message exposes operation name: %s", body.Error.Message)
	}
}

func TestNotFoundResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFoundResponse(rec, httptest.NewRequest("GET", "/nope", nil), testLogger())

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
