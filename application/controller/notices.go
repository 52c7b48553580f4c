package controller

import (
	"sync"

	"ideaboard/application/ports"

	"go.uber.org/zap"
)

// LogNotifier writes notices to the application log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier backed by logger
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements ports.Notifier
func (n *LogNotifier) Notify(notice ports.Notice) {
	fields := []zap.Field{zap.String("level", string(notice.Level))}
	if notice.NodeID != "" {
		fields = append(fields, zap.String("nodeID", notice.NodeID))
	}

	if notice.Level == ports.NoticeError {
		n.logger.Warn(notice.Message, fields...)
		return
	}
	n.logger.Info(notice.Message, fields...)
}

// DefaultNoticeCapacity is how many notices a NoticeLog keeps by default
const DefaultNoticeCapacity = 50

// NoticeLog keeps the most recent notices for a presentation layer to poll
type NoticeLog struct {
	mu       sync.Mutex
	notices  []ports.Notice
	next     int
	full     bool
	capacity int
}

// NewNoticeLog creates a ring holding up to capacity notices
func NewNoticeLog(capacity int) *NoticeLog {
	if capacity <= 0 {
		capacity = DefaultNoticeCapacity
	}
	return &NoticeLog{
		notices:  make([]ports.Notice, capacity),
		capacity: capacity,
	}
}

// Notify implements ports.Notifier
func (l *NoticeLog) Notify(notice ports.Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.notices[l.next] = notice
	l.next = (l.next + 1) % l.capacity
	if l.next == 0 {
		l.full = true
	}
}

// Recent returns the kept notices, oldest first
func (l *NoticeLog) Recent() []ports.Notice {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.full {
		out := make([]ports.Notice, l.next)
		copy(out, l.notices[:l.next])
		return out
	}

	out := make([]ports.Notice, 0, l.capacity)
	out = append(out, l.notices[l.next:]...)
	return append(out, l.notices[:l.next]...)
}

// MultiNotifier fans a notice out to several notifiers
type MultiNotifier []ports.Notifier

// Notify implements ports.Notifier
func (m MultiNotifier) Notify(notice ports.Notice) {
	for _, n := range m {
		n.Notify(notice)
	}
}
