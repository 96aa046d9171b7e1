package server

import (
	"fmt"

	"example.com/fixture/auth"
)

// Server handles incoming requests.
type Server struct {
	addr string
}

// New creates a Server bound to addr.
func New(addr string) *Server {
	return &Server{addr: addr}
}

// HandleLogin authenticates a request.
func (s *Server) HandleLogin(user, password string) (string, error) {
	token, err := auth.Login(user, password)
	if err != nil {
		return "", fmt.Errorf("handle login: %w", err)
	}
	return token, nil
}
