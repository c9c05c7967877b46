// Package crm holds the CRM object model and the record-manipulation
// logic for the training scenarios. The types mirror the Salesforce
// standard objects this module works with; persistence, querying and
// identifier assignment all belong to the platform and are reached
// through the Repository interface.
package crm

import (
	"strings"
	"time"
)

// Date is a calendar date serialized in the platform's "2006-01-02"
// wire format.
type Date struct {
	time.Time
}

// NewDate returns a Date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON implements the json.Marshaler interface.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Account is a Salesforce Account record. Name acts as the natural key
// for the find-or-create operations in this module.
type Account struct {
	ID          string `json:"Id,omitempty"`
	Name        string `json:"Name,omitempty"`
	Industry    string `json:"Industry,omitempty"`
	Description string `json:"Description,omitempty"`
}

// Contact is a Salesforce Contact record belonging to at most one
// Account via AccountID.
type Contact struct {
	ID        string `json:"Id,omitempty"`
	AccountID string `json:"AccountId,omitempty"`
	LastName  string `json:"LastName,omitempty"`
	FirstName string `json:"FirstName,omitempty"`
	Title     string `json:"Title,omitempty"`
}

// Opportunity is a Salesforce Opportunity record belonging to an
// Account. Name is the natural key within its parent account.
type Opportunity struct {
	ID        string  `json:"Id,omitempty"`
	AccountID string  `json:"AccountId,omitempty"`
	Name      string  `json:"Name,omitempty"`
	StageName string  `json:"StageName,omitempty"`
	CloseDate Date    `json:"CloseDate,omitzero"`
	Amount    float64 `json:"Amount,omitempty"`
}

// Lead is a minimal Salesforce Lead record, used only by the
// insert-then-delete scenario.
type Lead struct {
	ID       string `json:"Id,omitempty"`
	LastName string `json:"LastName,omitempty"`
	Company  string `json:"Company,omitempty"`
	Status   string `json:"Status,omitempty"`
}

// Case is a minimal Salesforce Case record, used only by the
// insert-then-delete scenario.
type Case struct {
	ID      string `json:"Id,omitempty"`
	Subject string `json:"Subject,omitempty"`
	Status  string `json:"Status,omitempty"`
	Origin  string `json:"Origin,omitempty"`
}
