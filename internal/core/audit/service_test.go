package audit

import (
	"context"
	"strings"
	"testing"
)

func TestMemoryStoreHistoryPerClient(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.LogChange(ctx, Change{ClientID: "a", Action: ActionUpdate, Entity: "chatbot-settings",
		OldValue: map[string]interface{}{"horario": "9-18"}, NewValue: map[string]interface{}{"horario": "10-19"}})
	_ = store.LogChange(ctx, Change{ClientID: "b", Action: ActionUpdate, Entity: "lead-settings"})
	_ = store.LogChange(ctx, Change{ClientID: "a", Action: ActionDisconnect, Entity: "calendar-integration"})

	logs, err := store.History(ctx, "a", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("got %d entries", len(logs))
	}
	for _, l := range logs {
		if l.ClientID != "a" || l.EntityID != "a" {
			t.Fatalf("foreign entry %+v", l)
		}
	}

	var update *AuditLog
	for i := range logs {
		if logs[i].Action == ActionUpdate {
			update = &logs[i]
		}
	}
	if update == nil || !strings.Contains(string(update.NewValue), "10-19") {
		t.Fatalf("update entry = %+v", update)
	}
}

func TestMemoryStoreLimit(t *testing.T) {
	store := NewMemoryStore()
	for i := 0; i < 5; i++ {
		_ = store.LogChange(context.Background(), Change{ClientID: "a", Action: ActionUpdate, Entity: "x"})
	}
	logs, _ := store.History(context.Background(), "a", 3)
	if len(logs) != 3 {
		t.Fatalf("got %d entries", len(logs))
	}
}
