// Package notify provides outbound notification transports.
package notify

import (
	"fmt"
	"strings"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

// maxContentLength is the longest message body chat webhooks accept.
const maxContentLength = 2000

// Render formats a notification as a short plain-text message.
func Render(n entities.Notification) string {
	var b strings.Builder
	for i, item := range n.Items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(renderItem(n.Event, item))
	}
	s := b.String()
	if len(s) > maxContentLength {
		s = s[:maxContentLength-3] + "..."
	}
	return s
}

func renderItem(event entities.NotificationEvent, item entities.NotificationItem) string {
	subject := item.Title
	if subject == "" {
		subject = item.RecordSlug
	}
	if item.Field != "" {
		subject = fmt.Sprintf("%s (%s)", subject, item.Field)
	}

	var line string
	switch {
	case event == entities.EventCreated:
		line = fmt.Sprintf("New %s for %s by %s", item.Kind, subject, displayName(item.Submitter))
	case item.Reviewer != nil:
		line = fmt.Sprintf("[%s] %s for %s by %s, reviewed by %s",
			strings.ToUpper(string(item.Status)), item.Kind, subject, displayName(item.Submitter), displayName(*item.Reviewer))
	default:
		line = fmt.Sprintf("[%s] %s for %s by %s",
			strings.ToUpper(string(item.Status)), item.Kind, subject, displayName(item.Submitter))
	}
	if item.Notes != "" {
		line += ": " + item.Notes
	}
	return line
}

func displayName(p entities.Person) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}
