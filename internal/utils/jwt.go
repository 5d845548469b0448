package utils // package utils provides helper functions for token creation and hashing

import (
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// Kiosks and back-office clients send it in the Authorization header of
// every store-scoped call.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a staff user.  Besides
// the standard sub/exp/iat claims it carries store_id, the tenant every
// request made with the token acts on.  Store 0 is the admin tenant.
func NewAccessToken(secret string, userID, storeID int64, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":      strconv.FormatInt(userID, 10),
        "store_id": storeID,
        "exp":      exp.Unix(),
        "iat":      now.Unix(),
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}
