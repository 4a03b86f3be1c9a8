package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	mu  sync.Mutex
	out io.Writer = os.Stdout

	gray   = color.New(color.FgHiBlack)
	blue   = color.New(color.FgBlue)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	cyan   = color.New(color.FgCyan)
	purple = color.New(color.FgMagenta)
	white  = color.New(color.FgWhite)
)

// SetOutput redirige les logs (utilisé par les tests)
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func write(c *color.Color, prefix, message string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	timestamp := time.Now().Format("15:04:05")
	fmt.Fprintf(out, "%s %s\n", gray.Sprintf("[%s]", timestamp), c.Sprint(prefix+fmt.Sprintf(message, args...)))
}

// Info log une information générale (bleu)
func Info(message string, args ...interface{}) {
	write(blue, "", message, args...)
}

// Success log un succès (vert)
func Success(message string, args ...interface{}) {
	write(green, "✓ ", message, args...)
}

// Warning log un avertissement (jaune)
func Warning(message string, args ...interface{}) {
	write(yellow, "⚠ ", message, args...)
}

// Error log une erreur (rouge)
func Error(message string, args ...interface{}) {
	write(red, "✗ ", message, args...)
}

// Debug log un message de debug (gris)
func Debug(message string, args ...interface{}) {
	write(gray, "DEBUG: ", message, args...)
}

// Request log une requête HTTP avec durée
func Request(method, path string, statusCode int, duration time.Duration) {
	var status *color.Color
	switch {
	case statusCode >= 200 && statusCode < 300:
		status = green
	case statusCode >= 300 && statusCode < 400:
		status = cyan
	case statusCode >= 400 && statusCode < 500:
		status = yellow
	default:
		status = red
	}

	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "%s %s %s %s %s\n",
		gray.Sprintf("[%s]", time.Now().Format("15:04:05")),
		purple.Sprintf("%-6s", method),
		white.Sprintf("%-50s", path),
		status.Sprintf("[%d]", statusCode),
		gray.Sprintf("(%s)", FormatDuration(duration)),
	)
}

// FormatDuration formate une durée pour les logs de requêtes
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
