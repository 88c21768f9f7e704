package service

import "log/slog"

// Notifier surfaces transient user-facing notifications (autosave results,
// publish failures). It is injected rather than ambient so the composer and
// calendar stay testable in isolation.
type Notifier interface {
	Notify(userID int64, level, message string)
}

const (
	NotifySuccess = "success"
	NotifyError   = "error"
)

type logNotifier struct{}

func NewLogNotifier() Notifier {
	return &logNotifier{}
}

func (n *logNotifier) Notify(userID int64, level, message string) {
	slog.Info("notification", "user_id", userID, "level", level, "message", message)
}
