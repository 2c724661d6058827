package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"dealership/internal/lifecycle"
)

func shipAwaiting(t *testing.T, env *testEnv, name string) string {
	t.Helper()
	order := mustOrder(t, env, name)
	_, err := env.orders.CommitShipping(context.Background(), order.ID, &lifecycle.ShippingRequest{
		Carrier:          "hoegh",
		AwaitingTracking: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	return order.ReferenceNumber
}

func TestCheckAwaitingTracking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fixClock(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	reminders := NewReminderService(env.orders, env.whatsapp, "0770000000")

	n, err := reminders.CheckAwaitingTracking(ctx)
	if err != nil || n != 0 {
		t.Fatalf("empty check = %d, %v", n, err)
	}

	ref := shipAwaiting(t, env, "Amine")
	n, err = reminders.CheckAwaitingTracking(ctx)
	if err != nil || n != 1 {
		t.Fatalf("disabled gateway = %d, %v", n, err)
	}
	if len(env.whatsapp.sent) != 0 {
		t.Fatal("sent without a gateway")
	}

	env.whatsapp.enabled = true
	if _, err := reminders.CheckAwaitingTracking(ctx); err != nil {
		t.Fatal(err)
	}
	if len(env.whatsapp.sent) != 1 {
		t.Fatalf("sent = %d", len(env.whatsapp.sent))
	}
	msg := env.whatsapp.sent[0]
	if msg.Phone != "0770000000" || !strings.Contains(msg.Message, ref+" (Amine) via Höegh Autoliners since 3/1/2025") {
		t.Fatalf("message = %+v", msg)
	}
}

func TestReminderSchedule(t *testing.T) {
	env := newTestEnv(t)
	reminders := NewReminderService(env.orders, env.whatsapp, "")

	if err := reminders.Start("not a schedule"); err == nil {
		t.Fatal("bad cron expression accepted")
	}
	if err := reminders.Start("0 9 * * *"); err != nil {
		t.Fatal(err)
	}
	reminders.Stop()
}
