package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/app_errors"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/delivery/http/controllers"
	"github.com/gin-gonic/gin"
)

const (
	CSRFCookieName = "csrf-token"
	CSRFHeaderName = "x-csrf-token"

	csrfTokenBytes = 32
	// Browser-session cookie semantics, bounded server-side anyway.
	csrfCookieMaxAge = 0
)

// CSRF enforces the double-submit-cookie contract: state-changing requests
// must echo the csrf-token cookie in the x-csrf-token header. The cookie is
// deliberately readable by script; the session cookies are not, and the
// defense rests on that asymmetry. The login POST is exempt because a fresh
// browser has no cookie to echo yet.
func CSRF(production bool, exemptPaths ...string) gin.HandlerFunc {
	exempt := make(map[string]struct{}, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = struct{}{}
	}

	return func(c *gin.Context) {
		cookieToken, err := c.Cookie(CSRFCookieName)
		if err != nil {
			cookieToken = ""
		}

		if safeMethod(c.Request.Method) || isExempt(c, exempt) {
			if cookieToken == "" {
				cookieToken, err = mintCSRFCookie(c, production)
				if err != nil {
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not issue CSRF token"})
					return
				}
			}
			c.Set(CSRFTokenCtx, cookieToken)
			c.Next()
			return
		}

		headerToken := c.GetHeader(CSRFHeaderName)
		if cookieToken == "" || headerToken == "" || !tokensEqual(cookieToken, headerToken) {
			controllers.AbortWithError(c, app_errors.ErrCSRFToken)
			return
		}
		c.Set(CSRFTokenCtx, cookieToken)
		c.Next()
	}
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func isExempt(c *gin.Context, exempt map[string]struct{}) bool {
	if c.Request.Method != http.MethodPost {
		return false
	}
	_, ok := exempt[c.Request.URL.Path]
	return ok
}

func mintCSRFCookie(c *gin.Context, production bool) (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	// NOT httpOnly: client script has to read this cookie to echo it back.
	if production {
		c.SetSameSite(http.SameSiteNoneMode)
		c.SetCookie(CSRFCookieName, token, csrfCookieMaxAge, "/", "", true, false)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CSRFCookieName, token, csrfCookieMaxAge, "/", "", false, false)
	}
	return token, nil
}

func tokensEqual(a, b string) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
