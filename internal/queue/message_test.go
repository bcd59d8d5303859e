package queue

import (
	"context"
	"reflect"
	"testing"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := Message{
		DataType:     "cv_documents",
		RecordID:     "doc-123",
		DeletionDate: "2026-09-15T00:00:00Z",
		EnqueuedAt:   "2026-08-16T09:00:00Z",
		Version:      1,
	}

	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}

	got, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}

	if !reflect.DeepEqual(got, msg) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, msg)
	}
}

func TestMemoryClientCollectsMessages(t *testing.T) {
	client := NewMemoryClient()

	for i := 0; i < 3; i++ {
		msg := Message{DataType: "sessions", RecordID: "session-1", Version: 1}
		if err := client.Send(context.Background(), msg); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	if got := len(client.Messages()); got != 3 {
		t.Fatalf("expected 3 messages, got %d", got)
	}
}
