package models

// Session is the authenticated identity of the current user.
//
// A nil *Session is the anonymous state.
type Session struct {
	UserID    int    `json:"user_id"`
	Username  string `json:"username"`
	AuthToken string `json:"access_token"`
	CSRFToken string `json:"-"`
}

// LoginResponse is the body returned by POST /users/login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int    `json:"user_id"`
	Username    string `json:"username"`
}

// Session converts the login body into a [Session].
func (r LoginResponse) Session() *Session {
	return &Session{UserID: r.UserID, Username: r.Username, AuthToken: r.AccessToken}
}

// User is an account as the backend reports it.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt *DateTime `json:"created_at,omitempty"`
}
