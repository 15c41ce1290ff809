package domain

// Session carries the current principal. Components receive it explicitly on
// login/logout transitions instead of inferring authentication from ambient
// state.
type Session struct {
	UserID string
	Token  string
}

// Authenticated reports whether the session belongs to a signed-in user.
func (s Session) Authenticated() bool {
	return s.UserID != "" && s.Token != ""
}

// Guest is the zero session used before login and after logout.
var Guest = Session{}
