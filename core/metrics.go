package core

import (
	"context"
	"fmt"
	"strings"
)

// Metric names recorded by Service for every Initialize and Update call:
//
//	ownership.<operation>.total        counter, value 1
//	ownership.<operation>.duration_ms  histogram, wall time in milliseconds
//
// Both carry the tags operation, status (success or failure) and, when
// known, namespace, event and error_code.
const (
	metricPrefix         = "ownership."
	metricTotalSuffix    = ".total"
	metricDurationSuffix = ".duration_ms"
)

var metricTagKeys = []string{"namespace", "event", "error_code"}

// OperationCounterName returns the counter name recorded for operation.
func OperationCounterName(operation string) string {
	return metricPrefix + metricOperation(operation) + metricTotalSuffix
}

// OperationDurationName returns the histogram name recorded for operation.
func OperationDurationName(operation string) string {
	return metricPrefix + metricOperation(operation) + metricDurationSuffix
}

func metricOperation(operation string) string {
	operation = normalizeOperation(operation)
	if operation == "" {
		return "unknown"
	}
	return operation
}

// operationTags builds the metric tags from the log fields of one operation.
func operationTags(operation, status string, fields map[string]any) map[string]string {
	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}
	for _, key := range metricTagKeys {
		if value := strings.TrimSpace(fmt.Sprint(fields[key])); value != "" && value != "<nil>" {
			tags[key] = value
		}
	}
	return tags
}

// NopMetricsRecorder drops every ownership.* metric.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

func cloneTags(tags map[string]string) map[string]string {
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}

var _ MetricsRecorder = NopMetricsRecorder{}
