package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSignupValidationMessages(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		param   string
		wantMsg string
	}{
		{
			name:    "missing name",
			body:    `{"surname":"Doe","email":"a@b.co","password":"secret1","confirm_password":"secret1","age_check":true,"terms_check":true}`,
			param:   "name",
			wantMsg: "Please enter your name",
		},
		{
			name:    "bad email",
			body:    `{"name":"Jamie","surname":"Doe","email":"nope","password":"secret1","confirm_password":"secret1","age_check":true,"terms_check":true}`,
			param:   "email",
			wantMsg: "Please enter a valid email address",
		},
		{
			name:    "short password",
			body:    `{"name":"Jamie","surname":"Doe","email":"a@b.co","password":"abc","confirm_password":"abc","age_check":true,"terms_check":true}`,
			param:   "password",
			wantMsg: "Password must be at least 6 characters",
		},
		{
			name:    "password mismatch",
			body:    `{"name":"Jamie","surname":"Doe","email":"a@b.co","password":"secret1","confirm_password":"secret2","age_check":true,"terms_check":true}`,
			param:   "confirm_password",
			wantMsg: "Passwords do not match",
		},
		{
			name:    "age unchecked",
			body:    `{"name":"Jamie","surname":"Doe","email":"a@b.co","password":"secret1","confirm_password":"secret1","terms_check":true}`,
			param:   "age_check",
			wantMsg: "You must confirm you are over 18",
		},
		{
			name:    "terms unchecked",
			body:    `{"name":"Jamie","surname":"Doe","email":"a@b.co","password":"secret1","confirm_password":"secret1","age_check":true}`,
			param:   "terms_check",
			wantMsg: "You must accept the terms of service and privacy policy",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			var dst SignupRequest
			if decodeAndValidate(rec, req, &dst) {
				t.Fatal("expected validation failure")
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("got status %d", rec.Code)
			}

			var resp struct {
				Success bool         `json:"success"`
				Errors  []FieldError `json:"errors"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("bad response body: %v", err)
			}
			if resp.Success {
				t.Fatal("expected success=false")
			}
			for _, fe := range resp.Errors {
				if fe.Param == tc.param {
					if fe.Msg != tc.wantMsg {
						t.Fatalf("param %s msg = %q, want %q", tc.param, fe.Msg, tc.wantMsg)
					}
					return
				}
			}
			t.Fatalf("no error for param %s in %v", tc.param, resp.Errors)
		})
	}
}

func TestDecodeAndValidateBadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	var dst SigninRequest
	if decodeAndValidate(rec, req, &dst) {
		t.Fatal("expected decode failure")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d", rec.Code)
	}
}

func TestDecodeAndValidateSuccess(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"secret1"}`))
	rec := httptest.NewRecorder()

	var dst SigninRequest
	if !decodeAndValidate(rec, req, &dst) {
		t.Fatalf("expected success, body: %s", rec.Body.String())
	}
	if dst.Email != "a@b.co" {
		t.Fatalf("email = %q", dst.Email)
	}
}

func TestWriteMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	writeMessage(rec, http.StatusCreated, true, "done")

	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp["success"] != true || resp["message"] != "done" {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestCapitalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"password", "Password"},
		{"", ""},
		{"a", "A"},
		{"already Upper", "Already Upper"},
	}
	for _, tc := range tests {
		if got := capitalize(tc.in); got != tc.want {
			t.Fatalf("capitalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
