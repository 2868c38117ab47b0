package server

import (
	"crypto/subtle"
	"net/http"
)

// authorize checks the token query parameter against the configured token.
// An empty configured token admits everyone.
func (s *Server) authorize(r *http.Request) error {
	if s.cfg.Token == "" {
		return nil
	}
	got := r.URL.Query().Get("token")
	if subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.Token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}
