package logger

import (
	"time"
)

// Standard field key constants for structured logging.
const (
	FieldComponent  = "component"
	FieldSequenceID = "sequence_id"
	FieldStage      = "stage"
	FieldPage       = "page"
	FieldBatchSize  = "batch_size"
	FieldItems      = "items"
	FieldFetchCount = "fetch_count"
	FieldLastPage   = "last_page"
	FieldRequestID  = "request_id"
	FieldSource     = "source"
	FieldAttempt    = "attempt"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Debug("page fetched", logger.Fields("page", 2, "items", 50))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// PageFields creates fields describing one page fetch.
func PageFields(page, batchSize, items int) map[string]interface{} {
	return map[string]interface{}{
		FieldPage:      page,
		FieldBatchSize: batchSize,
		FieldItems:     items,
	}
}

// MergeWithError adds an error field to an existing map.
func MergeWithError(fields map[string]interface{}, err error) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields[FieldError] = err.Error()
	return fields
}

// MergeWithDuration adds a duration field to an existing map.
func MergeWithDuration(fields map[string]interface{}, d time.Duration) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields[FieldDuration] = d.Milliseconds()
	return fields
}
