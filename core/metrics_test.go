package core

import "testing"

func TestOperationMetricNames(t *testing.T) {
	cases := map[string][2]string{
		"initialize": {"ownership.initialize.total", "ownership.initialize.duration_ms"},
		" Update ":   {"ownership.update.total", "ownership.update.duration_ms"},
		"check-role": {"ownership.check_role.total", "ownership.check_role.duration_ms"},
		"":           {"ownership.unknown.total", "ownership.unknown.duration_ms"},
	}
	for operation, want := range cases {
		if got := OperationCounterName(operation); got != want[0] {
			t.Fatalf("counter name for %q: got %q, want %q", operation, got, want[0])
		}
		if got := OperationDurationName(operation); got != want[1] {
			t.Fatalf("duration name for %q: got %q, want %q", operation, got, want[1])
		}
	}
}

func TestOperationTags_SkipsMissingFields(t *testing.T) {
	tags := operationTags("update", "failure", map[string]any{
		"namespace":  "billing",
		"event":      nil,
		"error_code": OwnerErrorNotOwner,
		"sender":     "mallory",
	})
	if tags["operation"] != "update" || tags["status"] != "failure" {
		t.Fatalf("unexpected base tags %+v", tags)
	}
	if tags["namespace"] != "billing" || tags["error_code"] != OwnerErrorNotOwner {
		t.Fatalf("unexpected field tags %+v", tags)
	}
	if _, ok := tags["event"]; ok {
		t.Fatalf("expected nil event to be skipped, got %+v", tags)
	}
	if _, ok := tags["sender"]; ok {
		t.Fatalf("expected sender to stay out of metric tags, got %+v", tags)
	}
}
