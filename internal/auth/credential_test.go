package auth

import "testing"

func TestParseCredentialSchemes(t *testing.T) {
	cases := []struct {
		header string
		scheme Scheme
		token  string
	}{
		{"Bearer abc.def.ghi", SchemeBearer, "abc.def.ghi"},
		{"bearer tok", SchemeBearer, "tok"},
		{"BEARER tok", SchemeBearer, "tok"},
		{"ApiKey key_123", SchemeAPIKey, "key_123"},
		{"apikey key_123", SchemeAPIKey, "key_123"},
		{"Basic dXNlcjpwYXNz", SchemeUnsupported, "dXNlcjpwYXNz"},
	}
	for _, c := range cases {
		cred, err := ParseCredential(c.header)
		if err != nil {
			t.Fatalf("ParseCredential(%q): %v", c.header, err)
		}
		if cred.Scheme != c.scheme {
			t.Fatalf("ParseCredential(%q): scheme %v, want %v", c.header, cred.Scheme, c.scheme)
		}
		if cred.Token != c.token {
			t.Fatalf("ParseCredential(%q): token %q, want %q", c.header, cred.Token, c.token)
		}
	}
}

func TestParseCredentialMalformed(t *testing.T) {
	for _, header := range []string{"", "Bearer", "Bearer a b", "   "} {
		if _, err := ParseCredential(header); err == nil {
			t.Fatalf("ParseCredential(%q): expected error", header)
		}
	}
}
