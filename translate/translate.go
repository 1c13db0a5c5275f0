// Package translate renders error-message text in the host locale.
// Message formats are authored in en-US; when no catalog matches the
// host locale the en-US text is used unchanged, so From is always a
// safe Sprintf.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

const FALLBACK_LOCALE = "en-US" // Used when the host locale is unknown.

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("uctrace: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{FALLBACK_LOCALE}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// From formats an en-US Sprintf() message in the host locale.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
