package middleware

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/antonminaichev/foodflow/internal/response"
	"github.com/antonminaichev/foodflow/internal/types/user"
)

type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (w gzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func GzipHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Encoding") == "gzip" {
			gzr, err := gzip.NewReader(r.Body)
			if err != nil {
				response.Error(rw, http.StatusBadRequest, "failed to create gzip reader")
				return
			}
			defer gzr.Close()
			r.Body = io.NopCloser(gzr)
		}

		if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			rw.Header().Set("Content-Encoding", "gzip")
			rw.Header().Add("Vary", "Accept-Encoding")
			gzw := gzip.NewWriter(rw)
			defer gzw.Close()

			gzrw := gzipResponseWriter{Writer: gzw, ResponseWriter: rw}
			next.ServeHTTP(gzrw, r)
		} else {
			next.ServeHTTP(rw, r)
		}
	})
}

// UserFinder loads the account named by a token subject.
type UserFinder interface {
	FindUserByID(ctx context.Context, id string) (*user.User, error)
}

type ctxKeyUser struct{}

type principal struct {
	id   string
	role user.Role
}

func JWTMiddleware(secret []byte, repo UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				response.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			tokenStr := strings.TrimPrefix(auth, "Bearer ")

			claims := &jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid || claims.Subject == "" {
				response.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}

			u, err := repo.FindUserByID(r.Context(), claims.Subject)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			ctx := ContextWithUser(r.Context(), u.ID, u.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose role is not among roles with 403.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Error(w, http.StatusForbidden, "access denied for role "+string(role))
		})
	}
}

func UserIDFromContext(ctx context.Context) string {
	p, _ := ctx.Value(ctxKeyUser{}).(principal)
	return p.id
}

func RoleFromContext(ctx context.Context) user.Role {
	p, _ := ctx.Value(ctxKeyUser{}).(principal)
	return p.role
}

func ContextWithUser(ctx context.Context, userID string, role user.Role) context.Context {
	return context.WithValue(ctx, ctxKeyUser{}, principal{id: userID, role: role})
}
