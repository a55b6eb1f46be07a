package server

import (
	"net/http"
	"time"

	"github.com/jonathan/career-path/internal/events"
	"github.com/jonathan/career-path/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	userService *UserService
	jwtService  *JWTService
	srv         *Server
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
// srv supplies response writing and event publishing.
func NewAuthHandler(userService *UserService, jwtService *JWTService, srv *Server) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		srv:         srv,
	}
}

// Signup handles user registration requests.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req types.CreateUserRequest
	if err := decodeJSON(r, &req, req.Validate); err != nil {
		h.srv.handleError(w, r, err)
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		h.srv.handleError(w, r, err)
		return
	}
	h.srv.publish(r.Context(), events.TypeUserCreated, user.ID, map[string]string{"email": user.Email})

	h.respondWithToken(w, r, http.StatusCreated, user)
}

// Login handles user login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(r, &req, req.Validate); err != nil {
		h.srv.handleError(w, r, err)
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		h.srv.handleError(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *types.User) {
	token, err := h.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		h.srv.handleError(w, r, err)
		return
	}

	h.srv.jsonResponse(w, status, types.Token{
		AccessToken: token,
		TokenType:   types.TokenTypeBearer,
		ExpiresIn:   int(h.jwtService.Expiration().Seconds()),
		User:        user,
	})
}

// Verify reports whether the token query parameter is valid.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtService.ValidateToken(r.URL.Query().Get("token"))
	if err != nil {
		h.srv.errorResponse(w, http.StatusUnauthorized, "Invalid or expired authentication token")
		return
	}
	userID, _ := claims.UserID()

	h.srv.jsonResponse(w, http.StatusOK, map[string]any{
		"valid":   true,
		"email":   claims.Email,
		"user_id": userID,
	})
}

// Health describes the token issuer.
func (h *AuthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	h.srv.jsonResponse(w, http.StatusOK, map[string]any{
		"status":               "ok",
		"algorithm":            h.jwtService.Algorithm(),
		"token_expiry_minutes": int(h.jwtService.Expiration() / time.Minute),
	})
}
