package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/linkpreview/models"
)

// apiKeyContextKey holds the authenticated key; RateLimiter buckets by it.
const apiKeyContextKey = "api_key"

// keySources are tried in order; the query parameter lets the /cards page
// be opened from a browser.
var keySources = []func(c *gin.Context) string{
	func(c *gin.Context) string { return c.GetHeader("X-API-Key") },
	func(c *gin.Context) string {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok {
			return ""
		}
		return strings.TrimSpace(token)
	},
	func(c *gin.Context) string { return c.Query("api_key") },
}

// Auth returns API-key authentication middleware. Keys are accepted from
// X-API-Key, Authorization: Bearer, or ?api_key=.
//
// If apiKeys has no non-empty entry the middleware is a no-op (open access).
func Auth(apiKeys []string) gin.HandlerFunc {
	var digests [][sha256.Size]byte
	for _, k := range apiKeys {
		if k != "" {
			digests = append(digests, sha256.Sum256([]byte(k)))
		}
	}
	if len(digests) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := presentedKey(c)
		if key == "" {
			abort(c, http.StatusUnauthorized, models.ErrCodeUnauthorized,
				"missing API key: provide X-API-Key header or Authorization: Bearer <key>")
			return
		}
		if !knownKey(digests, key) {
			abort(c, http.StatusUnauthorized, models.ErrCodeUnauthorized, "invalid API key")
			return
		}

		c.Set(apiKeyContextKey, key)
		c.Next()
	}
}

func presentedKey(c *gin.Context) string {
	for _, src := range keySources {
		if key := src(c); key != "" {
			return key
		}
	}
	return ""
}

// knownKey compares digests in constant time so response timing does not
// reveal how much of a key matched.
func knownKey(digests [][sha256.Size]byte, key string) bool {
	d := sha256.Sum256([]byte(key))
	found := 0
	for i := range digests {
		found |= subtle.ConstantTimeCompare(d[:], digests[i][:])
	}
	return found == 1
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: msg, Code: code})
}
