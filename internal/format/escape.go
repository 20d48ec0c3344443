package format

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// Escape neutralizes markup-significant characters in user-controlled text
// so it cannot break HTML rendering of the notification.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}
