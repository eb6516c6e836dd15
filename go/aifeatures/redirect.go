package aifeatures

import (
	"net/url"
	"strings"
)

// IsRedirectURL reports whether u is usable as a form redirect: an absolute
// URL or a relative reference such as "/thank-you" or "thank-you".
func IsRedirectURL(u string) bool {
	if u == "" || strings.ContainsAny(u, " \t\r\n") {
		return false
	}
	_, err := url.Parse(u)
	return err == nil
}
