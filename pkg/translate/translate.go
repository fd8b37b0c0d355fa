// Package translate formats user visible messages for the user's locale.
package translate

import (
	"log/slog"

	"github.com/jeandeaual/go-locale"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Fallback is the language used when the system locale cannot be detected
const Fallback = "en-US"

var printer = message.NewPrinter(detect())

func detect() language.Tag {
	locales, err := locale.GetLocales()
	if err != nil {
		slog.Debug("locale detection failed", "error", err)
	}

	if len(locales) == 0 {
		locales = []string{Fallback}
	}

	return message.MatchLanguage(locales...)
}

// SetLanguage overrides the detected locale, e.g. from configuration
func SetLanguage(tag string) error {
	parsed, err := language.Parse(tag)
	if err != nil {
		return err
	}
	printer = message.NewPrinter(parsed)
	return nil
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
