package logger

import "fmt"

const (
	reset  = "\033[0m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	gray   = "\033[90m"
	bold   = "\033[1m"
)

func emit(color, mark, tag, msg string) {
	fmt.Printf("%s%s%s %s[%s]%s %s\n", color, mark, reset, gray, tag, reset, msg)
}

// Info logs a neutral progress message under the given tag.
func Info(tag, msg string) {
	emit(cyan, "•", tag, msg)
}

// Success logs a completed step.
func Success(tag, msg string) {
	emit(green, "✓", tag, msg)
}

// Warn logs a recoverable problem.
func Warn(tag, msg string) {
	emit(yellow, "!", tag, msg)
}

// Error logs a failure.
func Error(tag, msg string) {
	emit(red, "✗", tag, msg)
}

// Banner prints the startup header with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Printf("%s%s┌──────────────────────────────┐%s\n", bold, cyan, reset)
	fmt.Printf("%s%s│  pagepack  %-17s │%s\n", bold, cyan, version, reset)
	fmt.Printf("%s%s└──────────────────────────────┘%s\n", bold, cyan, reset)
}

// Server prints the address the HTTP server is listening on.
func Server(addr string) {
	fmt.Printf("%s➜%s  Listening on %shttp://%s%s\n", green, reset, bold, addr, reset)
}

// Section prints a visual divider for a named phase.
func Section(name string) {
	fmt.Printf("\n%s── %s %s\n", gray, name, reset)
}

// Stats prints a key/value pair, aligned for scanning.
func Stats(key string, value interface{}) {
	fmt.Printf("  %s%-20s%s %v\n", gray, key, reset, value)
}
