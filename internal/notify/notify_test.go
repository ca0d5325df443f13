package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/courtedge/courtbot/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubSender records deliveries.
type stubSender struct {
	name     string
	err      error
	titles   []string
	messages []string
}

func (s *stubSender) Send(_ context.Context, title, message string) error {
	if s.err != nil {
		return s.err
	}
	s.titles = append(s.titles, title)
	s.messages = append(s.messages, message)
	return nil
}

func (s *stubSender) Name() string { return s.name }

func TestNotifierFiltersEvents(t *testing.T) {
	t.Parallel()

	sender := &stubSender{name: "stub"}
	n := NewNotifier([]Sender{sender}, []string{EventArbDetected}, discardLogger())

	if err := n.Notify(context.Background(), EventScanFailed, "nope", "filtered"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(sender.titles) != 0 {
		t.Fatalf("unsubscribed event delivered: %v", sender.titles)
	}

	if err := n.Notify(context.Background(), EventArbDetected, "yes", "delivered"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(sender.titles) != 1 || sender.titles[0] != "yes" {
		t.Fatalf("titles = %v, want the subscribed event", sender.titles)
	}
}

func TestNotifierEmptySubscriptionAllowsAll(t *testing.T) {
	t.Parallel()

	sender := &stubSender{name: "stub"}
	n := NewNotifier([]Sender{sender}, nil, discardLogger())

	if err := n.Notify(context.Background(), "anything", "t", "m"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(sender.titles) != 1 {
		t.Fatal("notification with empty subscription list was not delivered")
	}
}

func TestNotifierContinuesPastFailingSender(t *testing.T) {
	t.Parallel()

	failing := &stubSender{name: "broken", err: errors.New("boom")}
	working := &stubSender{name: "working"}
	n := NewNotifier([]Sender{failing, working}, nil, discardLogger())

	err := n.Notify(context.Background(), EventArbDetected, "t", "m")
	if err == nil {
		t.Fatal("expected the failing sender's error to surface")
	}
	if len(working.titles) != 1 {
		t.Fatal("second sender skipped after the first failed")
	}
}

func testOpportunity() domain.ArbitrageOpportunity {
	return domain.ArbitrageOpportunity{
		MatchupKey: domain.MatchupKey("carlos alcaraz | jannik sinner"),
		PlayerA:    "Alcaraz",
		PlayerB:    "Sinner",
		Tournament: "ATP Rome",
		OddsA:      2.10,
		SourceA:    "bet365",
		OddsB:      2.20,
		SourceB:    "pinnacle",
		ProfitPct:  7.44,
		StakeAPct:  51.15,
		StakeBPct:  48.85,
		DetectedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAlertsFormatsOpportunity(t *testing.T) {
	t.Parallel()

	sender := &stubSender{name: "stub"}
	alerts := NewAlerts(NewNotifier([]Sender{sender}, nil, discardLogger()), 0, discardLogger())

	alerts.OpportunityDetected(context.Background(), testOpportunity())

	if len(sender.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(sender.messages))
	}
	msg := sender.messages[0]
	for _, want := range []string{
		"Alcaraz vs Sinner (ATP Rome)",
		"Back Alcaraz @ 2.10 (bet365)",
		"Back Sinner @ 2.20 (pinnacle)",
		"Stakes: 51.15% / 48.85%",
		"Guaranteed profit: 7.44%",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestAlertsSuppressesBelowThreshold(t *testing.T) {
	t.Parallel()

	sender := &stubSender{name: "stub"}
	alerts := NewAlerts(NewNotifier([]Sender{sender}, nil, discardLogger()), 10.0, discardLogger())

	alerts.OpportunityDetected(context.Background(), testOpportunity())

	if len(sender.messages) != 0 {
		t.Fatalf("opportunity below threshold was delivered: %v", sender.messages)
	}
}

func TestAlertsScanFailed(t *testing.T) {
	t.Parallel()

	sender := &stubSender{name: "stub"}
	alerts := NewAlerts(NewNotifier([]Sender{sender}, nil, discardLogger()), 0, discardLogger())

	alerts.ScanFailed(context.Background(), "all sources unavailable")

	if len(sender.messages) != 1 || sender.messages[0] != "all sources unavailable" {
		t.Fatalf("messages = %v, want the failure reason", sender.messages)
	}
}

func TestTelegramSender(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotPayload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	sender := NewTelegramSender("token123", "chat42").WithBaseURL(srv.URL)
	if err := sender.Send(context.Background(), "Title", "Body"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotPath != "/bottoken123/sendMessage" {
		t.Errorf("path = %q, want the bot sendMessage endpoint", gotPath)
	}
	if gotPayload["chat_id"] != "chat42" {
		t.Errorf("chat_id = %q, want chat42", gotPayload["chat_id"])
	}
	if !strings.HasPrefix(gotPayload["text"], "*Title*\n") {
		t.Errorf("text = %q, want bold title prefix", gotPayload["text"])
	}
}

func TestTelegramSenderErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	sender := NewTelegramSender("token", "chat").WithBaseURL(srv.URL)
	if err := sender.Send(context.Background(), "t", "m"); err == nil {
		t.Fatal("expected an error for a 400 response")
	}
}

func TestDiscordSender(t *testing.T) {
	t.Parallel()

	var gotPayload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sender := NewDiscordSender(srv.URL)
	if err := sender.Send(context.Background(), "Title", "Body"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.HasPrefix(gotPayload["content"], "**Title**\n") {
		t.Errorf("content = %q, want bold title prefix", gotPayload["content"])
	}
}
