package bulk

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDocumentIDDeterministic(t *testing.T) {
	record := `{"msg":"hello world"}`
	first := DocumentID(record)
	second := DocumentID(record)
	if first != second {
		t.Fatalf("same content produced different ids: %s vs %s", first, second)
	}
	if len(first) != 24 {
		t.Fatalf("expected 24 hex chars (12 bytes), got %d: %s", len(first), first)
	}
	if other := DocumentID(`{"msg":"hello worlds"}`); other == first {
		t.Fatalf("different content produced identical id %s", first)
	}
}

func TestBodyActionLines(t *testing.T) {
	records := []string{`{"a":1}`, `{"b":2}`, `{"c":3}`}
	body := string(Body(records, "logs-test", false, time.Now()))

	if !strings.HasSuffix(body, "\n") {
		t.Fatal("body must end with a newline")
	}
	lines := strings.Split(strings.TrimSuffix(body, "\n"), "\n")
	if len(lines) != 2*len(records) {
		t.Fatalf("expected %d lines, got %d", 2*len(records), len(lines))
	}
	for i, record := range records {
		var action struct {
			Create struct {
				Index string `json:"_index"`
				ID    string `json:"_id"`
			} `json:"create"`
		}
		if err := json.Unmarshal([]byte(lines[2*i]), &action); err != nil {
			t.Fatalf("action line %d is not valid JSON: %v", i, err)
		}
		if action.Create.Index != "logs-test" {
			t.Errorf("action line %d: index = %q, want logs-test", i, action.Create.Index)
		}
		if action.Create.ID != DocumentID(record) {
			t.Errorf("action line %d: id = %q, want %q", i, action.Create.ID, DocumentID(record))
		}
		if lines[2*i+1] != record {
			t.Errorf("content line %d = %q, want %q", i, lines[2*i+1], record)
		}
	}
}

func TestBodyIsReusable(t *testing.T) {
	records := []string{`{"a":1}`, `{"b":2}`}
	now := time.Date(2024, 11, 20, 18, 0, 0, 0, time.UTC)
	first := Body(records, "idx", false, now)
	second := Body(records, "idx", false, now)
	if string(first) != string(second) {
		t.Fatal("identical inputs produced different payloads")
	}
}

func TestBodyLiveMode(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)
	record := `{"ts":"2024-11-20T18:35:12.123Z","msg":"x"}`
	body := string(Body([]string{record}, "logs-live", true, now))

	lines := strings.Split(strings.TrimSuffix(body, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if strings.Contains(lines[0], "_id") {
		t.Errorf("live mode action line must not carry _id: %s", lines[0])
	}
	want := `{"ts":"2025-03-14T09:26:53.589Z","msg":"x"}`
	if lines[1] != want {
		t.Errorf("content line = %q, want %q", lines[1], want)
	}
}

func TestRewriteTimestamps(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	replacement := "2025-01-02T03:04:05.006Z"

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "utc with millis",
			in:   `ts=2024-11-20T18:35:12.123Z level=info`,
			want: `ts=` + replacement + ` level=info`,
		},
		{
			name: "no fraction",
			in:   `2024-11-20T18:35:12Z`,
			want: replacement,
		},
		{
			name: "numeric offset",
			in:   `2024-11-20T18:35:12.123+00:00`,
			want: replacement,
		},
		{
			name: "space separated",
			in:   `at 2024-11-20 18:35:12 exactly`,
			want: `at ` + replacement + ` exactly`,
		},
		{
			name: "multiple matches",
			in:   `from 2024-01-01T00:00:00Z to 2024-12-31 23:59:59`,
			want: `from ` + replacement + ` to ` + replacement,
		},
		{
			name: "no timestamp untouched",
			in:   `{"msg":"nothing to see","count":20241120}`,
			want: `{"msg":"nothing to see","count":20241120}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RewriteTimestamps(tt.in, now); got != tt.want {
				t.Errorf("RewriteTimestamps(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
