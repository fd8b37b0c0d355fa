package debugger

import (
	"errors"
	"strings"

	"github.com/Manu343726/rvdb/pkg/translate"
)

var f = translate.From

// Sentinel messages are en-US translation keys, rendered in the current
// language by localizeError when printed.
var (
	// Expression errors
	ErrLexical      = errors.New("lexical error")
	ErrSyntax       = errors.New("syntax error")
	ErrEvaluation   = errors.New("evaluation error")
	ErrNotTokenized = errors.New("expression evaluated without tokens")

	// Watchpoint errors
	ErrPoolExhausted     = errors.New("no free watchpoint")
	ErrExpressionTooLong = errors.New("watchpoint expression too long")
	ErrNoSuchWatchpoint  = errors.New("no such watchpoint")

	// Command errors
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArgument    = errors.New("bad argument")
)

var sentinels = []error{
	ErrLexical,
	ErrSyntax,
	ErrEvaluation,
	ErrNotTokenized,
	ErrPoolExhausted,
	ErrExpressionTooLong,
	ErrNoSuchWatchpoint,
	ErrUnknownCommand,
	ErrBadArgument,
}

// localizeError renders err with the message of its sentinel in the current language
func localizeError(err error) string {
	message := err.Error()
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			key := sentinel.Error()
			return strings.Replace(message, key, f(key), 1)
		}
	}
	return message
}
