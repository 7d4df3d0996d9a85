package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the comma-separated origins in origins, or every origin when
// the list is empty or contains "*".
func CORS(origins string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		ExposeHeaders: []string{"Content-Length", HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}

	allowed := parseOrigins(origins)
	if len(allowed) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowed
	}
	return cors.New(config)
}

func parseOrigins(origins string) []string {
	var out []string
	for _, o := range strings.Split(origins, ",") {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if o == "*" {
			return nil
		}
		out = append(out, o)
	}
	return out
}
