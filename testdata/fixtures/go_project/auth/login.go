package auth

import "errors"

// ErrBadCredentials is returned when a login attempt fails.
var ErrBadCredentials = errors.New("bad credentials")

// Login validates a user's credentials and returns a session token.
func Login(user, password string) (string, error) {
	if user == "" || password == "" {
		return "", ErrBadCredentials
	}
	return "token-" + user, nil
}
