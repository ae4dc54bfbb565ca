package middlewares

import (
	"context"
	"net/http"
	"strings"

	"pmes/utils"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Claims carries the authenticated user's id. Role and organizational
// membership are always re-read from the user collection, never trusted
// from the token.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type contextKey string

const UserContextKey contextKey = "user"

// JWTMiddleware rejects requests without a valid bearer token.
func JWTMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := parseBearer(r, jwtSecret)
			if !ok {
				utils.HandleMessageResponse(w, "Unauthorized: User not authenticated", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalJWTMiddleware populates the caller id when a valid token is
// present and lets the request through either way. Used on endpoints that
// also accept the worker id in the request body.
func OptionalJWTMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, ok := parseBearer(r, jwtSecret); ok {
				r = r.WithContext(context.WithValue(r.Context(), UserContextKey, userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseBearer(r *http.Request, jwtSecret string) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return "", false
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return "", false
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", false
	}
	return claims.UserID, true
}

// GetUserIDFromContext resolves the authenticated caller's object id.
func GetUserIDFromContext(ctx context.Context) (primitive.ObjectID, bool) {
	hex, ok := ctx.Value(UserContextKey).(string)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
