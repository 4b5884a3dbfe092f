// Package console prints harness progress in the bracketed style users see
// during grading: green [+] for progress, yellow [!] for warnings and red
// [!] for failures.
package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

const (
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiRed    = "\x1b[31m"
	ansiReset  = "\x1b[0m"
)

var (
	mu  sync.Mutex
	log = newLogger(os.Stdout)
)

func newLogger(out io.Writer) zerolog.Logger {
	w := zerolog.ConsoleWriter{Out: out}
	w.PartsOrder = []string{zerolog.LevelFieldName, zerolog.MessageFieldName}
	w.FormatLevel = func(i any) string {
		switch i {
		case zerolog.LevelInfoValue:
			return ansiGreen + "[+]" + ansiReset
		case zerolog.LevelWarnValue:
			return ansiYellow + "[!]" + ansiReset
		default:
			return ansiRed + "[!]" + ansiReset
		}
	}
	w.FormatMessage = func(i any) string {
		if i == nil {
			return ""
		}
		return fmt.Sprintf("%s", i)
	}
	return zerolog.New(w)
}

// SetOutput redirects console output, mainly for tests.
func SetOutput(out io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log = newLogger(out)
}

// Okf reports progress.
func Okf(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	log.Info().Msgf(format, args...)
}

// Warnf warns the user without failing anything.
func Warnf(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	log.Warn().Msgf(format, args...)
}

// Errf reports a failure.
func Errf(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	log.Error().Msgf(format, args...)
}
