package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
    ctxUserID  = "user_id"
    ctxStoreID = "store_id"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject and store claims into the request context.
// The provided secret must match the one used when issuing tokens.  A token
// without a store_id claim carries no store context and is rejected with
// 401, as is a missing or invalid token.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            // JSON numbers decode as float64
            store, ok := claims["store_id"].(float64)
            if !ok || store < 0 || store != float64(int64(store)) {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no store context"})
            }
            if sub, ok := claims["sub"].(string); ok {
                c.Set(ctxUserID, sub)
            }
            c.Set(ctxStoreID, int64(store))
            return next(c)
        }
    }
}

// CallerStore returns the store of the authenticated caller.  ok is false
// when JWTAuth did not run or found no store.
func CallerStore(c echo.Context) (int64, bool) {
    id, ok := c.Get(ctxStoreID).(int64)
    return id, ok
}

// userID extracts the subject from the context; "anon" when absent.
func userID(c echo.Context) string {
    if s, ok := c.Get(ctxUserID).(string); ok && s != "" {
        return s
    }
    return "anon"
}
