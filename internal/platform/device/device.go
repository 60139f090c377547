// Package device renders a human-readable client descriptor from the
// User-Agent header. The descriptor lands on audit events so reviewers
// can tell an admin console from a script without storing the raw header.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Describe summarizes a User-Agent as "Browser x.y on OS" or "Bot (name)".
// Empty input yields an empty descriptor.
func Describe(rawUserAgent string) string {
	if rawUserAgent == "" {
		return ""
	}

	ua := useragent.New(rawUserAgent)
	if ua.Bot() {
		name, _ := ua.Browser()
		if name == "" {
			return "Bot"
		}
		return "Bot (" + name + ")"
	}

	name, version := ua.Browser()
	if name == "" {
		// Non-browser clients (curl, SDKs) keep their product token.
		if idx := strings.IndexAny(rawUserAgent, " ("); idx > 0 {
			return rawUserAgent[:idx]
		}
		return rawUserAgent
	}

	desc := name
	if version != "" {
		if idx := strings.Index(version, "."); idx > 0 {
			version = version[:idx]
		}
		desc += " " + version
	}
	if os := ua.OSInfo().Name; os != "" {
		desc += " on " + os
	}
	return desc
}
