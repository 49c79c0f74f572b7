// Package browser extracts the little the login call needs from a
// User-Agent string: a browser name, a version, and a mobile flag.
package browser

import "strings"

// Unknown is reported when the User-Agent gives nothing to go on.
const Unknown = "Unknown"

// Info describes the requesting browser.
type Info struct {
	Name    string
	Version string
	Mobile  bool
}

var mobileMarkers = []string{
	"Mobile", "Android", "iPhone", "iPad", "iPod",
	"Windows Phone", "BlackBerry", "Opera Mini",
}

// Parse sniffs a User-Agent string. It is deliberately coarse: the values
// only travel to the backend as diagnostic headers, nothing branches on
// them here.
func Parse(userAgent string) Info {
	info := Info{Name: Unknown, Version: Unknown}
	if userAgent == "" {
		return info
	}

	for _, marker := range mobileMarkers {
		if strings.Contains(userAgent, marker) {
			info.Mobile = true
			break
		}
	}

	// Order matters: Chrome-family agents also advertise Safari, and
	// Edge/Opera also advertise Chrome.
	switch {
	case strings.Contains(userAgent, "Edg/"):
		info.Name = "Edge"
		info.Version = versionAfter(userAgent, "Edg/")
	case strings.Contains(userAgent, "OPR/"):
		info.Name = "Opera"
		info.Version = versionAfter(userAgent, "OPR/")
	case strings.Contains(userAgent, "Firefox/"):
		info.Name = "Firefox"
		info.Version = versionAfter(userAgent, "Firefox/")
	case strings.Contains(userAgent, "Chrome/"):
		info.Name = "Chrome"
		info.Version = versionAfter(userAgent, "Chrome/")
	case strings.Contains(userAgent, "Safari/") && strings.Contains(userAgent, "Version/"):
		info.Name = "Safari"
		info.Version = versionAfter(userAgent, "Version/")
	}

	return info
}

func versionAfter(userAgent, marker string) string {
	rest := userAgent[strings.Index(userAgent, marker)+len(marker):]
	if end := strings.IndexAny(rest, " ;)"); end >= 0 {
		rest = rest[:end]
	}
	if rest == "" {
		return Unknown
	}
	return rest
}
