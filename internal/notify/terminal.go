// Package notify raises terminal notifications while snapshots are watched.
package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"chartline-trader/internal/models"
)

// Kind represents the type of terminal notification.
type Kind int

const (
	KindPending Kind = iota
	KindExecuted
	KindError
	KindInfo
)

func (k Kind) String() string {
	switch k {
	case KindPending:
		return "PENDING"
	case KindExecuted:
		return "EXECUTED"
	case KindError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// Notification represents a notification to be displayed in the terminal.
type Notification struct {
	Kind      Kind
	Source    string
	Subject   string // trendline label, e.g. PH9->PH7
	Message   string
	Timestamp time.Time
	Priority  int // Higher = more important
}

// Handler handles a delivered notification.
type Handler func(n Notification)

// TerminalNotifier queues notifications and delivers them on its own
// goroutine once started.
type TerminalNotifier struct {
	notifications chan Notification
	out           io.Writer
	handlers      []Handler
	seen          map[string]bool
	mu            sync.RWMutex
	enabled       bool
	bellEnabled   bool
}

// NewTerminalNotifier creates a notifier writing bells to out.
func NewTerminalNotifier(bufferSize int, out io.Writer) *TerminalNotifier {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &TerminalNotifier{
		notifications: make(chan Notification, bufferSize),
		out:           out,
		seen:          make(map[string]bool),
		enabled:       true,
	}
}

// SetBellEnabled enables or disables the terminal bell.
func (tn *TerminalNotifier) SetBellEnabled(enabled bool) {
	tn.mu.Lock()
	defer tn.mu.Unlock()
	tn.bellEnabled = enabled
}

// SetEnabled enables or disables the notifier.
func (tn *TerminalNotifier) SetEnabled(enabled bool) {
	tn.mu.Lock()
	defer tn.mu.Unlock()
	tn.enabled = enabled
}

// AddHandler adds a notification handler.
func (tn *TerminalNotifier) AddHandler(handler Handler) {
	tn.mu.Lock()
	defer tn.mu.Unlock()
	tn.handlers = append(tn.handlers, handler)
}

// Notify queues a notification. When the buffer is full the oldest queued
// notification is dropped.
func (tn *TerminalNotifier) Notify(n Notification) {
	tn.mu.RLock()
	enabled := tn.enabled
	tn.mu.RUnlock()

	if !enabled {
		return
	}

	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	select {
	case tn.notifications <- n:
	default:
		select {
		case <-tn.notifications:
		default:
		}
		tn.notifications <- n
	}
}

// Start starts delivering notifications until ctx is cancelled.
func (tn *TerminalNotifier) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case n := <-tn.notifications:
				tn.deliver(n)
			}
		}
	}()
}

func (tn *TerminalNotifier) deliver(n Notification) {
	tn.mu.RLock()
	handlers := tn.handlers
	bellEnabled := tn.bellEnabled
	tn.mu.RUnlock()

	if bellEnabled && n.Priority > 1 && tn.out != nil {
		fmt.Fprint(tn.out, "\a")
	}

	for _, handler := range handlers {
		handler(n)
	}
}

// NotifyContract queues a notification for a pending or executed contract
// the first time it is seen for source. Invalid contracts are ignored.
func (tn *TerminalNotifier) NotifyContract(source string, c models.ContractView) {
	var kind Kind
	switch c.Receiver.OrderStatus {
	case models.OrderPending:
		kind = KindPending
	case models.OrderExecuted:
		kind = KindExecuted
	default:
		return
	}

	prefix := c.Type.ExtremumKind().Prefix()
	subject := fmt.Sprintf("%s%d->%s%d", prefix, c.Sender.ArrowNumber, prefix, c.Receiver.ArrowNumber)
	key := source + "|" + subject + "|" + string(c.Receiver.OrderStatus)

	tn.mu.Lock()
	if tn.seen[key] {
		tn.mu.Unlock()
		return
	}
	tn.seen[key] = true
	tn.mu.Unlock()

	priority := 1
	if kind == KindPending {
		priority = 2
	}
	tn.Notify(Notification{
		Kind:     kind,
		Source:   source,
		Subject:  subject,
		Message:  fmt.Sprintf("%s order, parent %s", c.Receiver.OrderType, c.Receiver.OrderParent),
		Priority: priority,
	})
}

// NotifyError queues an error notification for source.
func (tn *TerminalNotifier) NotifyError(source string, err error) {
	tn.Notify(Notification{
		Kind:     KindError,
		Source:   source,
		Message:  err.Error(),
		Priority: 3,
	})
}

// Format renders a notification as one terminal line.
func Format(n Notification, colorEnabled bool) string {
	var c *color.Color
	switch n.Kind {
	case KindPending:
		c = color.New(color.FgYellow, color.Bold)
	case KindExecuted:
		c = color.New(color.FgGreen)
	case KindError:
		c = color.New(color.FgRed, color.Bold)
	default:
		c = color.New(color.FgWhite)
	}
	if colorEnabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}

	var sb strings.Builder
	sb.WriteString(n.Timestamp.Format("15:04:05"))
	sb.WriteString(" ")
	sb.WriteString(c.Sprintf("%-8s", n.Kind))
	if n.Source != "" {
		sb.WriteString(" ")
		sb.WriteString(n.Source)
	}
	if n.Subject != "" {
		sb.WriteString(" ")
		sb.WriteString(n.Subject)
	}
	if n.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(n.Message)
	}
	return sb.String()
}
