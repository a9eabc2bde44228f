package ci

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

var escaper = strings.NewReplacer(
	"|", "||",
	"'", "|'",
	"\n", "|n",
	"\r", "|r",
	"[", "|[",
	"]", "|]",
)

// Escape escapes s for use as a TeamCity service message value.
func Escape(s string) string {
	return escaper.Replace(s)
}

// ServiceMessage formats a single-value service message, e.g.
// ##teamcity[progressMessage 'text'].
func ServiceMessage(name, value string) string {
	return fmt.Sprintf("##teamcity[%s '%s']", name, Escape(value))
}

// ServiceMessageAttrs formats a service message with named attributes,
// sorted by name.
func ServiceMessageAttrs(name string, attrs map[string]string) string {
	var b strings.Builder
	b.WriteString("##teamcity[")
	b.WriteString(name)
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		fmt.Fprintf(&b, " %s='%s'", k, Escape(attrs[k]))
	}
	b.WriteString("]")
	return b.String()
}
