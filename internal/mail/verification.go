package mail

import (
	"fmt"
	"strings"
)

// VerificationSubject is the subject line of verification emails.
const VerificationSubject = "Verify your email address"

// VerificationBody builds the plain text body of a verification email. The
// link points at the frontend, which forwards the token to the API.
func VerificationBody(name, frontendURL, token string) string {
	link := fmt.Sprintf("%s/verify-email/%s", strings.TrimRight(frontendURL, "/"), token)
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	b.WriteString("Thanks for signing up. Please confirm your email address by opening the link below:\n\n")
	b.WriteString(link)
	b.WriteString("\n\nThe link is valid for 24 hours. If you did not create this account you can ignore this message.\n")
	return b.String()
}
