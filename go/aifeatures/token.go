package aifeatures

import (
	"fmt"
	"strings"
)

// ValidateSiteToken checks that token looks like a site token (st_...).
// Organization API keys (sk_...) and unprefixed values are rejected.
func ValidateSiteToken(token string) error {
	if token == "" {
		return &ConfigError{Msg: "No site token provided"}
	}
	if strings.HasPrefix(token, "sk_") {
		return &ConfigError{Msg: "Invalid token type: You passed an organization API key (sk_xxx) but the dashboard requires a site token (st_xxx). Site tokens are returned when you create a site via the API."}
	}
	if !strings.HasPrefix(token, "st_") {
		preview := token
		if len(preview) > 10 {
			preview = preview[:10]
		}
		return &ConfigError{Msg: fmt.Sprintf(`Invalid token format: Expected a site token starting with "st_" but got "%s...". Site tokens are returned when you create a site via the API.`, preview)}
	}
	return nil
}
