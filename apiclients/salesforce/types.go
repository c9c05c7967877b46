package salesforce

import (
	"encoding/json"
	"fmt"
	"strings"
)

// QueryResponse is the top-level envelope for a SOQL query response.
// Records are kept raw for the caller to unmarshal into the
// appropriate sObject type.
type QueryResponse struct {
	TotalSize      int               `json:"totalSize"`
	Done           bool              `json:"done"`
	NextRecordsURL string            `json:"nextRecordsUrl"`
	Records        []json.RawMessage `json:"records"`
}

// sObjectResult is the response body from the single-record sObject
// endpoints (create and upsert).
type sObjectResult struct {
	ID      string        `json:"id"`
	Success bool          `json:"success"`
	Errors  []ErrorDetail `json:"errors"`
}

// CollectionsRequest is the structure for the sObject Collections API
// request body.
type CollectionsRequest struct {
	AllOrNone bool             `json:"allOrNone"`
	Records   []map[string]any `json:"records"`
}

// CollectionsResponse is the response from the sObject Collections
// API, a slice of SaveResult objects in submission order.
type CollectionsResponse []SaveResult

// SaveResult represents the outcome of a single record operation
// within a batch.
type SaveResult struct {
	ID      string        `json:"id"`
	Success bool          `json:"success"`
	Errors  []ErrorDetail `json:"errors"`
}

// ErrorDetail provides specific information about a failure.
type ErrorDetail struct {
	StatusCode string   `json:"statusCode"`
	Message    string   `json:"message"`
	Fields     []string `json:"fields"`
	ErrorCode  string   `json:"errorCode"`
}

// failures summarizes the failed results in a CollectionsResponse as a
// slice of human-readable messages, one per failed record.
func (cr CollectionsResponse) failures() []string {
	var messages []string
	for _, result := range cr {
		if result.Success {
			continue
		}
		var errors []string
		for _, e := range result.Errors {
			errors = append(errors, fmt.Sprintf("%s (%s)", e.Message, e.ErrorCode))
		}
		messages = append(messages, fmt.Sprintf("record %s: %s", result.ID, strings.Join(errors, ", ")))
	}
	return messages
}

// Err returns an error summarizing any failed results, or nil if every
// record in the batch succeeded.
func (cr CollectionsResponse) Err() error {
	failures := cr.failures()
	if len(failures) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d records failed:\n- %s",
		len(failures), len(cr), strings.Join(failures, "\n- "))
}
