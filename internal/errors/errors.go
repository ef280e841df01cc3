// Package errors formats command failures for the terminal and the log.
package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitick/internal/logger"
	"github.com/julianstephens/habitick/internal/storage"
)

// Format prefixes err with "Error: ", or returns "" for nil.
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if stderrors.Is(err, storage.ErrNotFound) {
		msg += " (run 'habitick habit list' to see existing habits)"
	}
	return msg
}

func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs err, prints it to stderr and exits with status 1. A nil err is ignored.
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

func Fatalf(format string, args ...interface{}) {
	Fatal(fmt.Errorf(format, args...))
}
