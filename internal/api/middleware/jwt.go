package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/hirevox/hirevox/internal/utils"
)

const (
	RoleRecruiter = "recruiter"
	RoleAdmin     = "admin"
	RoleCandidate = "candidate"

	recruiterTokenTTL = 24 * time.Hour
	candidateTokenTTL = 2 * time.Hour
)

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

// Claims is the single token shape for both recruiter logins and candidate
// session tokens. Candidate tokens are scoped to one session and one
// campaign; the session fields stay empty for recruiters.
type Claims struct {
	jwt.RegisteredClaims
	Role       string `json:"role"`
	SessionID  string `json:"session_id,omitempty"`
	CampaignID string `json:"campaign_id,omitempty"`
}

func jwtSecret() ([]byte, error) {
	s := os.Getenv("HIREVOX_JWT_SECRET")
	if s == "" {
		return nil, errors.New("HIREVOX_JWT_SECRET is not set")
	}
	return []byte(s), nil
}

// IssueRecruiterToken signs a token for a logged-in recruiter.
func IssueRecruiterToken(recruiterID, role string) (string, error) {
	secret, err := jwtSecret()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   recruiterID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(recruiterTokenTTL)),
		},
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// IssueCandidateToken signs a session-scoped token handed out when an
// invite is redeemed. It grants access to exactly one interview session.
func IssueCandidateToken(inviteID, sessionID, campaignID string) (string, error) {
	secret, err := jwtSecret()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   inviteID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(candidateTokenTTL)),
		},
		Role:       RoleCandidate,
		SessionID:  sessionID,
		CampaignID: campaignID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret, err := jwtSecret()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
				Code:    utils.CodeInternal,
				Message: "HIREVOX_JWT_SECRET is not set",
			})
			return
		}

		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "missing bearer token",
			})
			return
		}

		claims := &Claims{}
		tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || tok == nil || !tok.Valid || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "invalid token",
			})
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("role", claims.Role)
		if claims.SessionID != "" {
			c.Set("token_session_id", claims.SessionID)
		}
		if claims.CampaignID != "" {
			c.Set("token_campaign_id", claims.CampaignID)
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	// browsers cannot set headers on websocket upgrades
	return strings.TrimSpace(c.Query("token"))
}
