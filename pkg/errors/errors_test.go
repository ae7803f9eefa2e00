package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestFromStatusClassification(t *testing.T) {
	rateLimited := FromStatus(429, "throttled")
	if !IsRateLimited(rateLimited) {
		t.Error("429 should classify as rate limited")
	}
	if errors.Is(rateLimited, ErrBulkRejected) {
		t.Error("429 should not classify as a bulk rejection")
	}

	rejected := FromStatus(500, "boom")
	if IsRateLimited(rejected) {
		t.Error("500 should not classify as rate limited")
	}
	if !errors.Is(rejected, ErrBulkRejected) {
		t.Error("500 should classify as a bulk rejection")
	}
}

func TestRequestErrorMessage(t *testing.T) {
	err := FromStatus(400, `{"error":"mapper_parsing_exception"}`)
	msg := err.Error()
	for _, want := range []string{"status 400", "mapper_parsing_exception"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message %q missing %q", msg, want)
		}
	}

	bare := FromStatus(503, "")
	if !strings.Contains(bare.Error(), "status 503") {
		t.Errorf("error message %q missing status", bare.Error())
	}
}

func TestIsRateLimitedThroughWrapping(t *testing.T) {
	wrapped := &RequestError{Err: ErrRateLimited, StatusCode: 429}
	if !IsRateLimited(wrapped) {
		t.Error("wrapped rate limit error not detected")
	}
	if IsRateLimited(errors.New("unrelated")) {
		t.Error("unrelated error misclassified as rate limited")
	}
}
