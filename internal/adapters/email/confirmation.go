package email

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"techfest/internal/domain/eventinfo"
	"techfest/internal/domain/registration"
)

var (
	markdown = goldmark.New()
	policy   = bluemonday.UGCPolicy()
)

// ConfirmationSubject is the subject line of the registration confirmation.
func ConfirmationSubject(info eventinfo.Info) string {
	name := info.Name
	if name == "" {
		name = "the event"
	}
	return "You're registered for " + name
}

// Confirmation builds the email sent to an attendee after their
// registration is stored. The body is written as markdown, rendered with
// goldmark and sanitised before sending.
// PRE: stored.Email is the recipient
// POST: Returns a request addressed to stored.Email
func Confirmation(stored registration.Stored, info eventinfo.Info) (SendRequest, error) {
	var md strings.Builder
	fmt.Fprintf(&md, "# Registration Successful!\n\n")
	fmt.Fprintf(&md, "Hi %s, thank you for registering for **%s**.\n\n", escape(stored.FirstName), escape(info.Name))
	if r := info.DateRange(); r != "" {
		fmt.Fprintf(&md, "**When:** %s\n\n", escape(r))
	}
	if info.Location != "" {
		fmt.Fprintf(&md, "**Where:** %s\n\n", escape(info.Location))
	}
	md.WriteString("## Registration Details\n\n")
	for _, line := range stored.Summary() {
		fmt.Fprintf(&md, "- **%s:** %s\n", line.Label, escape(line.Value))
	}
	fmt.Fprintf(&md, "\nYour registration reference is `%s`.\n", stored.ID)

	var out bytes.Buffer
	if err := markdown.Convert([]byte(md.String()), &out); err != nil {
		return SendRequest{}, fmt.Errorf("render confirmation: %w", err)
	}
	return SendRequest{
		To:      []string{stored.Email},
		Subject: ConfirmationSubject(info),
		HTML:    policy.Sanitize(out.String()),
	}, nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`,
	"<", "&lt;", ">", "&gt;", "#", `\#`,
)

// escape keeps attendee-supplied text from being read as markdown.
func escape(s string) string {
	return markdownEscaper.Replace(s)
}
