package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/html-hub/learninghub/internal/identity"
)

// POST /auth/student  { "name": "..." }
//
// Pre-auth student sessions: the name is folded into a stable pseudonymous id
// so progress keeps accruing under the same key across visits. The id is a
// lookup key, not a credential; anyone entering the same name gets the same
// records.
func StudentLoginHandler(a *AuthService) http.HandlerFunc {
	type out struct {
		AccessToken string `json:"access_token"`
		UserID      string `json:"user_id"`
		Name        string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		id := identity.NameIdentity{Name: name}
		tok, err := a.IssueJWT(id.ProgressKey(), "student", id.DisplayName())
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(out{AccessToken: tok, UserID: id.ProgressKey(), Name: name})
	}
}

// POST /auth/login  { "username": "...", "password": "..." }
func AdminLoginHandler(a *AuthService, adminUser, adminPassHash string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Username != adminUser ||
			bcrypt.CompareHashAndPassword([]byte(adminPassHash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT(req.Username, "admin", req.Username)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok})
	}
}
