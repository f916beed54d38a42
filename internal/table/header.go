package table

import (
	"regexp"
	"strings"
)

var styleSuffix = regexp.MustCompile(`^(.*)\[\[([^\]]*)\]\]\s*$`)

// SplitStyle separates a trailing plot style spec from a header name:
// "speed [[r--]]" yields "speed" and "r--".
func SplitStyle(header string) (name, style string) {
	m := styleSuffix.FindStringSubmatch(header)
	if m == nil {
		return strings.TrimSpace(header), ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

// StripStyles returns headers without their style specs.
func StripStyles(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i], _ = SplitStyle(h)
	}
	return out
}
