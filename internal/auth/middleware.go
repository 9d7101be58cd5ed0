package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const claimsKey = "auth.claims"

// AdminSet is the configuration-supplied set of privileged identities.
type AdminSet map[string]struct{}

// ParseAdminSet builds an AdminSet from a comma-separated list of emails.
func ParseAdminSet(s string) AdminSet {
	set := AdminSet{}
	for _, e := range strings.Split(s, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}

// Contains reports whether email belongs to the admin set.
func (a AdminSet) Contains(email string) bool {
	_, ok := a[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// RequireAdmin verifies the bearer token and requires the caller's email to
// be in the admin set. Missing/malformed credentials are 401, a verified
// non-admin identity is 403.
func RequireAdmin(v *Verifier, admins AdminSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}
		claims, err := v.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}
		if !admins.Contains(claims.Email) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden_not_admin"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFromContext returns the verified claims set by RequireAdmin.
func ClaimsFromContext(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}
