package spritekit

import (
	"log"
	"os"
)

// logger receives warnings and, in debug mode, trace output. Single-threaded
// callers may swap it with SetLogger.
var logger = log.New(os.Stderr, "[spritekit] ", log.LstdFlags)

// debugMode gates debugf output.
var debugMode bool

// SetLogger redirects warnings and debug output. A nil logger restores the
// default stderr logger.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(os.Stderr, "[spritekit] ", log.LstdFlags)
	}
	logger = l
}

// SetDebugMode enables or disables verbose trace logging of packing, binding
// and texture lifecycle.
func SetDebugMode(enabled bool) {
	debugMode = enabled
}

// warnf logs a recoverable problem. Always printed.
func warnf(format string, args ...any) {
	logger.Printf("warning: "+format, args...)
}

func debugf(format string, args ...any) {
	if debugMode {
		logger.Printf(format, args...)
	}
}
