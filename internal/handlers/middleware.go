package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const IdentityContextKey ContextKey = "identity"

// Identity is the resolved caller, as asserted by the external identity
// service's token. This layer never derives permissions from the caregiver
// graph; the admin flag comes straight from the token.
type Identity struct {
	AdultID int64
	Admin   bool
}

type identityClaims struct {
	AdultID int64 `json:"adult_id"`
	Admin   bool  `json:"admin"`
	jwt.RegisteredClaims
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	jwtSecret []byte
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(jwtSecret string) *Middleware {
	return &Middleware{jwtSecret: []byte(jwtSecret)}
}

// RequireAuth verifies the bearer token issued by the identity service and
// injects the caller's Identity into the request context.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := m.authenticate(r)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin is RequireAuth plus the admin flag.
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		identity := GetIdentityFromContext(r.Context())
		if identity == nil || !identity.Admin {
			respondWithError(w, http.StatusForbidden, "Forbidden", "", nil)
			return
		}
		next(w, r)
	})
}

func (m *Middleware) authenticate(r *http.Request) (*Identity, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")

	claims := &identityClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}
	if claims.AdultID <= 0 {
		return nil, false
	}

	return &Identity{AdultID: claims.AdultID, Admin: claims.Admin}, true
}

// GetIdentityFromContext retrieves the authenticated caller, or nil
func GetIdentityFromContext(ctx context.Context) *Identity {
	identity, _ := ctx.Value(IdentityContextKey).(*Identity)
	return identity
}

// Logging logs every request with method, path, status and duration
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, recorder.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
