package identity

import "context"

type ctxKey string

const sessionKey ctxKey = "clinic360.session"

// Session is the authenticated caller established by the session middleware.
type Session struct {
	UserID int64
	Role   string
}

// WithSession stores the authenticated session in context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext extracts the authenticated session if present.
func SessionFromContext(ctx context.Context) (Session, bool) {
	val := ctx.Value(sessionKey)
	if val == nil {
		return Session{}, false
	}
	s, ok := val.(Session)
	return s, ok && s.UserID != 0
}
