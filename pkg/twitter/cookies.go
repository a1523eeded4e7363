package twitter

import (
	"regexp"
	"strings"
)

// CookieDomain is the canonical cookie domain the login flow keeps.
const CookieDomain = ".twitter.com"

var csrfPattern = regexp.MustCompile(`(?:^|; |;)ct0=([^;]*)`)

// Cookie is one cookie triple taken from a Set-Cookie header value.
type Cookie struct {
	Name   string
	Value  string
	Domain string
}

// ParseSetCookies converts raw Set-Cookie header values into cookie triples.
// Values without a Domain attribute yield an empty domain and are dropped by
// the domain filter later.
func ParseSetCookies(values []string) []Cookie {
	cookies := make([]Cookie, 0, len(values))
	for _, raw := range values {
		parts := strings.Split(raw, ";")

		nameValue := strings.SplitN(strings.TrimSpace(parts[0]), "=", 2)
		if len(nameValue) != 2 || nameValue[0] == "" {
			continue
		}

		cookie := Cookie{Name: nameValue[0], Value: nameValue[1]}
		for _, attr := range parts[1:] {
			attr = strings.TrimSpace(attr)
			if rest, ok := strings.CutPrefix(attr, "Domain="); ok {
				cookie.Domain = rest
				break
			}
		}

		cookies = append(cookies, cookie)
	}
	return cookies
}

// FilterDomain keeps only the triples under the given domain.
func FilterDomain(cookies []Cookie, domain string) []Cookie {
	filtered := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c.Domain == domain {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// CookieString joins cookie triples into a single name=value;name=value
// header string. A repeated name keeps its first-seen position with the most
// recent value, so the result is deterministic for a given arrival sequence.
func CookieString(cookies []Cookie) string {
	if len(cookies) == 0 {
		return ""
	}

	order := make([]string, 0, len(cookies))
	values := make(map[string]string, len(cookies))
	for _, c := range cookies {
		if _, seen := values[c.Name]; !seen {
			order = append(order, c.Name)
		}
		values[c.Name] = c.Value
	}

	pairs := make([]string, 0, len(order))
	for _, name := range order {
		pairs = append(pairs, name+"="+values[name])
	}
	return strings.Join(pairs, ";")
}

// CSRFToken extracts the ct0 fragment from a cookie string, or "" when the
// cookie string carries none.
func CSRFToken(cookieString string) string {
	m := csrfPattern.FindStringSubmatch(cookieString)
	if m == nil {
		return ""
	}
	return m[1]
}
