package api

import (
	"encoding/json"
	"fmt"
	"holdingsbuilder/internal/logger"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// userIDKey is the gin context key holding the token subject
const userIDKey = "userID"

type apiJWT struct {
	Subject   string `json:"sub"`
	Role      string `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func (m ApiHandler) authMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		returnErrorJsonCode(fmt.Errorf("missing authorization header"), c, http.StatusUnauthorized)
		return
	}
	jwtStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || jwtStr == "" {
		returnErrorJsonCode(fmt.Errorf("authorization header must be a bearer token"), c, http.StatusUnauthorized)
		return
	}

	token, err := parseJWT(jwtStr, m.JwtSecret)
	if err != nil {
		returnErrorJsonCode(err, c, http.StatusUnauthorized)
		return
	}

	c.Set(userIDKey, token.Subject)
	log := logger.FromContext(c.Request.Context()).With("userID", token.Subject)
	c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), log))
	c.Next()
}

// parseJWT verifies an HS256 token signed with the shared secret
func parseJWT(jwtStr string, decodeToken string) (*apiJWT, error) {
	token, err := jwt.Parse(jwtStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(decodeToken), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("failed to parse claims")
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return nil, fmt.Errorf("error marshalling claims: %w", err)
	}

	var parsedJWT apiJWT
	if err := json.Unmarshal(claimsJSON, &parsedJWT); err != nil {
		return nil, fmt.Errorf("error unmarshalling into JWT struct: %w", err)
	}

	if time.Now().UTC().Unix() > parsedJWT.ExpiresAt {
		return nil, fmt.Errorf("jwt is expired")
	}

	return &parsedJWT, nil
}
