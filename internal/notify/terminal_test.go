package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"chartline-trader/internal/models"
)

func pendingView(sender, receiver int, status models.OrderStatus) models.ContractView {
	return models.ContractView{
		Type:   models.PhToPh,
		Sender: models.SenderView{ArrowNumber: sender},
		Receiver: models.ReceiverView{
			ArrowNumber: receiver,
			OrderType:   models.OrderLong,
			OrderStatus: status,
			OrderParent: "PL8",
		},
	}
}

// collect starts tn and gathers delivered notifications.
func collect(t *testing.T, tn *TerminalNotifier) (func(n int) []Notification, context.CancelFunc) {
	t.Helper()
	var mu sync.Mutex
	var got []Notification
	tn.AddHandler(func(n Notification) {
		mu.Lock()
		got = append(got, n)
		mu.Unlock()
	})
	ctx, cancel := context.WithCancel(context.Background())
	tn.Start(ctx)

	wait := func(n int) []Notification {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			mu.Lock()
			if len(got) >= n {
				out := append([]Notification(nil), got...)
				mu.Unlock()
				return out
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
		}
		mu.Lock()
		defer mu.Unlock()
		return append([]Notification(nil), got...)
	}
	return wait, cancel
}

func TestNotifyContractDeduplicates(t *testing.T) {
	var out bytes.Buffer
	tn := NewTerminalNotifier(10, &out)
	wait, cancel := collect(t, tn)
	defer cancel()

	tn.NotifyContract("a.png", pendingView(9, 7, models.OrderPending))
	tn.NotifyContract("a.png", pendingView(9, 7, models.OrderPending))
	tn.NotifyContract("a.png", pendingView(9, 7, models.OrderExecuted))
	tn.NotifyContract("b.png", pendingView(9, 7, models.OrderPending))
	tn.NotifyContract("b.png", pendingView(5, 3, models.OrderInvalid))

	got := wait(3)
	if len(got) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(got))
	}
	if got[0].Kind != KindPending || got[0].Subject != "PH9->PH7" || got[0].Priority != 2 {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Kind != KindExecuted {
		t.Errorf("second kind = %s", got[1].Kind)
	}
	if out.Len() != 0 {
		t.Error("bell is off by default")
	}
}

func TestBellRingsForImportantNotifications(t *testing.T) {
	var out bytes.Buffer
	tn := NewTerminalNotifier(10, &out)
	tn.SetBellEnabled(true)

	tn.deliver(Notification{Kind: KindInfo, Priority: 1})
	if out.Len() != 0 {
		t.Error("info should not ring")
	}
	tn.deliver(Notification{Kind: KindPending, Priority: 2})
	if out.String() != "\a" {
		t.Errorf("out = %q", out.String())
	}
}

func TestDisabledNotifierDropsEverything(t *testing.T) {
	tn := NewTerminalNotifier(1, nil)
	tn.SetEnabled(false)
	tn.NotifyError("a.png", errors.New("boom"))
	if len(tn.notifications) != 0 {
		t.Error("disabled notifier queued a notification")
	}
}

func TestNotifyDropsOldestWhenFull(t *testing.T) {
	tn := NewTerminalNotifier(2, nil)
	for _, msg := range []string{"one", "two", "three"} {
		tn.Notify(Notification{Kind: KindInfo, Message: msg})
	}
	first := <-tn.notifications
	second := <-tn.notifications
	if first.Message != "two" || second.Message != "three" {
		t.Errorf("queue = %s, %s", first.Message, second.Message)
	}
}

func TestFormat(t *testing.T) {
	n := Notification{
		Kind:      KindPending,
		Source:    "a.png",
		Subject:   "PL4->PL2",
		Message:   "SHORT order, parent PH3",
		Timestamp: time.Date(2026, 1, 2, 9, 30, 5, 0, time.Local),
	}
	got := Format(n, false)
	if got != "09:30:05 PENDING  a.png PL4->PL2: SHORT order, parent PH3" {
		t.Errorf("Format = %q", got)
	}
	if colored := Format(n, true); !strings.Contains(colored, "\x1b[") {
		t.Error("colored output should carry escape codes")
	}
	if KindError.String() != "ERROR" || Kind(42).String() != "INFO" {
		t.Error("Kind.String")
	}
}
