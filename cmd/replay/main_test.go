package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeEvent(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "event.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing event: %v", err)
	}
	return path
}

func TestReadEvent_EmptyRecordsAccepted(t *testing.T) {
	for _, content := range []string{`{"Records":[]}`, `{}`} {
		event, err := readEvent(writeEvent(t, content))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", content, err)
		}
		if len(event.Records) != 0 {
			t.Fatalf("%s: expected no records, got %d", content, len(event.Records))
		}
	}
}

func TestReadEvent_Records(t *testing.T) {
	path := writeEvent(t, `{"Records":[{"messageId":"m-1","body":"{\"orderId\":\"A1\"}"}]}`)

	event, err := readEvent(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(event.Records) != 1 || event.Records[0].MessageId != "m-1" {
		t.Fatalf("unexpected records %+v", event.Records)
	}
	if event.Records[0].Body != `{"orderId":"A1"}` {
		t.Fatalf("unexpected body %q", event.Records[0].Body)
	}
}

func TestReadEvent_Errors(t *testing.T) {
	if _, err := readEvent(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := readEvent(writeEvent(t, "not json")); err == nil {
		t.Fatalf("expected error for malformed event")
	}
}
