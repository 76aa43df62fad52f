package dto

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestParseSignupForm(t *testing.T) {
	t.Parallel()

	full := url.Values{
		"fullname":         {" Alice Liddell "},
		"email":            {"alice@example.com"},
		"username":         {" alice "},
		"password":         {" pw "},
		"confirm_password": {" pw "},
	}

	form, err := ParseSignupForm(postForm(full))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if form.Username != " alice " || form.FullName != " Alice Liddell " {
		t.Errorf("fields must be kept as submitted, got %+v", form)
	}
	if form.Password != " pw " {
		t.Errorf("passwords must be kept as submitted, got %q", form.Password)
	}
}

func TestParseSignupForm_Errors(t *testing.T) {
	t.Parallel()

	valid := func() url.Values {
		return url.Values{
			"username":         {"alice"},
			"password":         {"pw"},
			"confirm_password": {"pw"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(url.Values)
		wantErr error
	}{
		{"optional_fields_absent", func(url.Values) {}, nil},
		{"missing_username", func(v url.Values) { v.Del("username") }, ErrMissingField},
		{"whitespace_username_is_a_value", func(v url.Values) { v.Set("username", "   ") }, nil},
		{"missing_password_left_to_service", func(v url.Values) { v.Del("password") }, nil},
		{"missing_confirm_left_to_service", func(v url.Values) { v.Del("confirm_password") }, nil},
		{"long_username", func(v url.Values) { v.Set("username", strings.Repeat("a", MaxUsernameLength+1)) }, ErrFieldTooLong},
		{"long_email", func(v url.Values) { v.Set("email", strings.Repeat("e", MaxEmailLength+1)) }, ErrFieldTooLong},
		{"long_password_left_to_service", func(v url.Values) { v.Set("password", strings.Repeat("p", MaxPasswordLength+1)) }, nil},
		{"mismatch_is_not_a_form_error", func(v url.Values) { v.Set("confirm_password", "other") }, nil},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			values := valid()
			test.mutate(values)

			_, err := ParseSignupForm(postForm(values))
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestParseSignupForm_IgnoresQuery(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/?username=bob&password=x&confirm_password=x", nil)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if _, err := ParseSignupForm(req); !errors.Is(err, ErrMissingField) {
		t.Fatalf("query parameters must not satisfy the form, got %v", err)
	}
}

func TestParseLoginForm(t *testing.T) {
	t.Parallel()

	form, err := ParseLoginForm(postForm(url.Values{"username": {" alice "}, "password": {"pw"}}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if form.Username != " alice " || form.Password != "pw" {
		t.Errorf("unexpected form: %+v", form)
	}

	form, err = ParseLoginForm(postForm(url.Values{"username": {"alice"}}))
	if err != nil {
		t.Fatalf("missing password should not fail parsing: %v", err)
	}
	if form.Password != "" {
		t.Errorf("expected empty password, got %q", form.Password)
	}

	form, _ = ParseLoginForm(postForm(url.Values{
		"username": {"alice"},
		"password": {strings.Repeat("p", MaxPasswordLength+1)},
	}))
	if form != (LoginForm{}) {
		t.Errorf("oversized input should be cleared, got %+v", form)
	}
}
