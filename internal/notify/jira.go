package notify

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var issueKey = regexp.MustCompile(`\b[A-Z]{2,5}-[0-9]{1,5}\b`)

// IssueKeys returns the distinct JIRA issue keys mentioned in text, in
// order of first appearance.
func IssueKeys(text string) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, k := range issueKey.FindAllString(text, -1) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

func issueLinks(jiraURL string, keys []string) string {
	if jiraURL == "" || len(keys) == 0 {
		return ""
	}
	base := strings.TrimRight(jiraURL, "/")
	var b strings.Builder
	b.WriteString("<div><p>The following JIRA issues are related to this deployment:</p>")
	for _, k := range keys {
		fmt.Fprintf(&b, "<div><a href=\"%s/browse/%s\">%s</a></div>", html.EscapeString(base), k, k)
	}
	b.WriteString("</div>")
	return b.String()
}
