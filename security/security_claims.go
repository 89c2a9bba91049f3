package security

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

func (c contextKey) String() string {
	return "lingo/security/" + string(c)
}

const ctxKeyPrincipal = contextKey("principalKey")

// Principal is an authenticated user whose attributes can be read by name.
type Principal interface {
	Attribute(name string) (string, bool)
}

// AuthenticationClaims defines the structure for JWT claims, embedding jwt.RegisteredClaims
// to include standard fields like expiry time, and adding the preferred locale.
type AuthenticationClaims struct {
	Ext       map[string]any `json:"ext,omitempty"`
	Locale    string         `json:"locale,omitempty"`
	ContactID string         `json:"contact_id,omitempty"`
	Roles     []string       `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

var _ Principal = new(AuthenticationClaims)

// Attribute resolves locale, sub and contact_id from the typed claims and anything
// else from Ext.
func (a *AuthenticationClaims) Attribute(name string) (string, bool) {
	if a == nil {
		return "", false
	}

	switch name {
	case "locale":
		if a.Locale != "" {
			return a.Locale, true
		}
	case "sub":
		if a.Subject != "" {
			return a.Subject, true
		}
	case "contact_id":
		if a.ContactID != "" {
			return a.ContactID, true
		}
	}

	return stringValue(a.Ext, name)
}

// MapPrincipal adapts free form JWT claims.
type MapPrincipal jwt.MapClaims

// Attribute reads a claim, rendering non string scalars.
func (m MapPrincipal) Attribute(name string) (string, bool) {
	return stringValue(m, name)
}

// ToContext adds the authenticated principal to the current supplied context.
func ToContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// FromContext extracts the authenticated principal from the supplied context if any exist.
func FromContext(ctx context.Context) Principal {
	p, ok := ctx.Value(ctxKeyPrincipal).(Principal)
	if !ok {
		return nil
	}
	return p
}

// ClaimsFromContext extracts typed authentication claims if the principal carries them.
func ClaimsFromContext(ctx context.Context) *AuthenticationClaims {
	claims, ok := FromContext(ctx).(*AuthenticationClaims)
	if !ok {
		return nil
	}
	return claims
}

func stringValue(m map[string]any, name string) (string, bool) {
	val, ok := m[name]
	if !ok || val == nil {
		return "", false
	}

	switch v := val.(type) {
	case string:
		return v, v != ""
	case fmt.Stringer:
		s := v.String()
		return s, s != ""
	case bool, float64, float32, int, int64, int32:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}
