package utils

import (
	"regexp"
	"strings"
)

var nonSlug = regexp.MustCompile("[^a-z0-9]+")

// Slugify lowercases s and collapses every run of non-alphanumerics into one hyphen.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = nonSlug.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
