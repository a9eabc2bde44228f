package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIssueKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "none", text: "fix typo", want: nil},
		{name: "dedup in order", text: "PAY-12 and OPS-7, again PAY-12", want: []string{"PAY-12", "OPS-7"}},
		{name: "lowercase ignored", text: "pay-12", want: nil},
		{name: "key without number ignored", text: "PAY- nothing", want: nil},
		{name: "too long project", text: "ABCDEFG-1", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IssueKeys(tt.text))
		})
	}
}

func TestIssueLinks(t *testing.T) {
	t.Parallel()

	assert.Empty(t, issueLinks("", []string{"PAY-1"}))
	assert.Empty(t, issueLinks("https://jira", nil))
	assert.Equal(t,
		`<div><p>The following JIRA issues are related to this deployment:</p><div><a href="https://jira/browse/PAY-1">PAY-1</a></div></div>`,
		issueLinks("https://jira/", []string{"PAY-1"}))
}
