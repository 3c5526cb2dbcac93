// Package notify is the user-facing notification sink. Stores report
// success and failure here instead of returning errors to views.
package notify

import "log"

type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// LogNotifier writes notifications to a logger. The CLI uses it; a UI
// embedding this layer would supply its own toast implementation.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(msg string) {
	n.logger.Printf("ok: %s", msg)
}

func (n *LogNotifier) Error(msg string) {
	n.logger.Printf("error: %s", msg)
}

// Discard drops all notifications.
type Discard struct{}

func (Discard) Success(string) {}
func (Discard) Error(string)   {}
