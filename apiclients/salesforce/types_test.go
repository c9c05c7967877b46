package salesforce

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCollectionsResponseErr(t *testing.T) {
	response := CollectionsResponse{
		{ID: "001-1", Success: true, Errors: []ErrorDetail{}},
		{
			ID:      "001-2",
			Success: false,
			Errors: []ErrorDetail{
				{StatusCode: "400", Message: "Required fields are missing: [Name]", ErrorCode: "REQUIRED_FIELD_MISSING", Fields: []string{"Name"}},
			},
		},
	}

	err := response.Err()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	for _, want := range []string{"001-2", "REQUIRED_FIELD_MISSING", "1 of 2"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error string %q in %q", want, err)
		}
	}
}

func TestCollectionsResponseErrNil(t *testing.T) {
	response := CollectionsResponse{
		{ID: "001-1", Success: true, Errors: []ErrorDetail{}},
	}
	if err := response.Err(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

// TestQueryResponseDecode checks the SOQL envelope fields, leaving
// records raw.
func TestQueryResponseDecode(t *testing.T) {
	body := `{
		"totalSize": 2,
		"done": false,
		"nextRecordsUrl": "/services/data/v65.0/query/01g-2000",
		"records": [{"Id": "a"}, {"Id": "b"}]
	}`
	var response QueryResponse
	if err := json.Unmarshal([]byte(body), &response); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if got, want := response.TotalSize, 2; got != want {
		t.Errorf("got totalSize %d want %d", got, want)
	}
	if response.Done {
		t.Error("got done true, want false")
	}
	if got, want := len(response.Records), 2; got != want {
		t.Errorf("got %d raw records want %d", got, want)
	}
}
