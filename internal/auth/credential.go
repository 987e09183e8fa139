package auth

import (
	"strings"

	"rcsapi/internal/domain"
)

// Scheme is the closed set of credential schemes the API accepts. The
// Authorization header is parsed exactly once, at the boundary; everything
// downstream switches on this tag instead of re-matching strings.
type Scheme int

const (
	SchemeUnsupported Scheme = iota
	SchemeBearer
	SchemeAPIKey
)

type Credential struct {
	Scheme Scheme
	Token  string
}

// ParseCredential splits an Authorization header into a scheme tag and the
// opaque credential. Scheme names match case-insensitively.
func ParseCredential(header string) (Credential, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[1] == "" {
		return Credential{}, domain.Unauthenticatedf("Could not validate credentials")
	}
	switch {
	case strings.EqualFold(parts[0], "bearer"):
		return Credential{Scheme: SchemeBearer, Token: parts[1]}, nil
	case strings.EqualFold(parts[0], "apikey"):
		return Credential{Scheme: SchemeAPIKey, Token: parts[1]}, nil
	default:
		return Credential{Scheme: SchemeUnsupported, Token: parts[1]}, nil
	}
}
