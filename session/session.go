// Package session describes the host session the locale detectors and stores read
// from and write to. Session implementations belong to the host application.
package session

import "context"

type contextKey string

func (c contextKey) String() string {
	return "lingo/session/" + string(c)
}

const ctxKeySession = contextKey("sessionKey")

// Session is the key/value surface of a host session.
type Session interface {
	Get(key string) (string, bool)
	Put(key, value string) error
}

// ToContext adds the request session to the supplied context.
func ToContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, s)
}

// FromContext extracts the request session from the supplied context if any exist.
func FromContext(ctx context.Context) Session {
	s, ok := ctx.Value(ctxKeySession).(Session)
	if !ok {
		return nil
	}
	return s
}
