package entities

import (
	"fmt"
	"strings"
)

// CommitMessage builds the message of a release commit. The root commit is
// scoped to the package (first '-' becomes '/'), the dependants commit uses
// the '*' scope. The optional body follows after a blank line.
func CommitMessage(pkg *Package, update Update, header, body string, dependants bool) string {
	scope := strings.Replace(pkg.Name, "-", "/", 1)
	if dependants {
		scope = "*"
	}
	breaking := ""
	if update.Breaking() {
		breaking = "!"
	}

	subject := fmt.Sprintf(
		"%s(%s)%s: %s of %s %s",
		update.CommitType(), scope, breaking, update.CommitDescription(), pkg.Name, update.Transition(pkg.Version),
	)
	if header = strings.TrimSpace(header); header != "" {
		subject += " (" + header + ")"
	}

	if body = strings.TrimSpace(body); body == "" {
		return subject
	}
	return subject + "\n\n" + body
}
