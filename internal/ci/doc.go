// Package ci reports deploy progress to the CI system running ranchup.
//
// On TeamCity it writes service messages (progressMessage, buildProblem)
// that annotate the build. Elsewhere it writes a short status line, styled
// with lipgloss when stdout is a terminal.
package ci
