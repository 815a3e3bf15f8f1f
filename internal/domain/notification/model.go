// Package notification composes the email sent to a member when their
// payment is reviewed.
package notification

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"gritgym/internal/domain/payment"
)

// Kind identifies which review outcome the message announces.
type Kind string

// Kind constants
const (
	KindApproved Kind = "approved"
	KindRejected Kind = "rejected"
)

// Domain errors
var (
	ErrNoRecipient = errors.New("payment has no email address")
	ErrUnknownKind = errors.New("unknown notification kind")
)

// mdRenderer escapes raw HTML in member-supplied text (WithUnsafe is not set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Message is a composed member notification.
type Message struct {
	Kind     Kind
	To       string
	Subject  string
	Markdown string
}

// Compose builds the message for p. expires is the pre-formatted expiry, "" when unknown.
// PRE: kind is KindApproved or KindRejected
// POST: Returns ErrNoRecipient when p has no email
func Compose(p payment.Payment, kind Kind, expires string) (Message, error) {
	if strings.TrimSpace(p.Email) == "" {
		return Message{}, ErrNoRecipient
	}
	name := literal(p.FullName)
	if name == "" {
		name = "member"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	msg := Message{Kind: kind, To: p.Email}
	switch kind {
	case KindApproved:
		msg.Subject = "Your Grit Gym membership is active"
		fmt.Fprintf(&b, "Your payment **%s** for the **%s** plan has been approved.\n", literal(p.ReferenceNumber), literal(planName(p.Plan)))
		if expires != "" {
			fmt.Fprintf(&b, "Your membership is valid until **%s**.\n", expires)
		}
		b.WriteString("\nSee you on the floor.\n")
	case KindRejected:
		msg.Subject = "Your Grit Gym payment could not be verified"
		fmt.Fprintf(&b, "We could not verify payment **%s** for the **%s** plan.\n", literal(p.ReferenceNumber), literal(planName(p.Plan)))
		b.WriteString("\nPlease reply to this email or visit the front desk so we can sort it out.\n")
	default:
		return Message{}, ErrUnknownKind
	}
	msg.Markdown = b.String()
	return msg, nil
}

// HTML renders the markdown body.
func (m Message) HTML() (string, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(m.Markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render notification: %w", err)
	}
	return buf.String(), nil
}

// mdLiteral backslash-escapes markdown punctuation and flattens line breaks.
var mdLiteral = func() *strings.Replacer {
	pairs := []string{"\r\n", " ", "\n", " ", "\r", " "}
	for _, c := range "\\`*_{}[]()#+-.!<>|~&" {
		pairs = append(pairs, string(c), "\\"+string(c))
	}
	return strings.NewReplacer(pairs...)
}()

// literal makes member-supplied text render as plain text.
func literal(s string) string {
	return mdLiteral.Replace(s)
}

func planName(plan string) string {
	if plan == "" {
		return "membership"
	}
	return plan
}
