package redact

import (
	"strings"
	"testing"
)

func TestRedact(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		kind  string
		leaks string
	}{
		{"email", "mail jane.doe@example.com today", "email", "jane.doe@example.com"},
		{"phone", "call me at (555) 123-4567", "phone", "123-4567"},
		{"ssn", "ssn is 123-45-6789", "ssn", "123-45-6789"},
		{"credit card", "card 4111 1111 1111 1111 ok", "credit_card", "4111"},
		{"ip", "server 10.0.12.7 is down", "ip_address", "10.0.12.7"},
		{"api key", "api_key=abcdefghijklmnopqrstuvwxyz", "api_key", "abcdefghijklmnopqrstuvwxyz"},
		{"password", "Password: hunter2!!", "password", "hunter2"},
		{"token", "token: 0123456789abcdefghijXYZ", "token", "0123456789abcdefghijXYZ"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Redact(tc.in)
			if !res.Redacted() {
				t.Fatalf("nothing redacted in %q", tc.in)
			}
			if res.Counts[tc.kind] == 0 {
				t.Fatalf("expected %s match, got %v", tc.kind, res.Counts)
			}
			if strings.Contains(res.Text, tc.leaks) {
				t.Fatalf("value leaked: %q", res.Text)
			}
			if !strings.Contains(res.Text, "[REDACTED_"+strings.ToUpper(tc.kind)+"]") {
				t.Fatalf("missing placeholder: %q", res.Text)
			}
		})
	}
}

func TestRedact_CleanText(t *testing.T) {
	in := "We need to ship the release by Friday."
	res := Redact(in)
	if res.Redacted() || res.Text != in {
		t.Fatalf("clean text changed: %+v", res)
	}
	if Contains(in) {
		t.Fatal("clean text reported as sensitive")
	}
}
