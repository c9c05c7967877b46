package salesforce

// repository.go adapts the REST client to the crm.Repository
// interface, keeping HTTP and SOQL concerns out of the crm package.
// Finds are single bulk SOQL queries over the candidate natural keys;
// saves split each batch into inserts (records without an ID) and
// updates (records with one), submitted through the sObject
// Collections API with platform-assigned identifiers copied back onto
// the returned batch.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sfrecords/crm"
)

// Repository implements crm.Repository against a Salesforce org.
type Repository struct {
	client *Client
}

// NewRepository returns a Repository using the provided authenticated
// client.
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

// assert interface conformance at compile time.
var _ crm.Repository = (*Repository)(nil)

// FindAccountsByName bulk fetches the accounts whose names are in the
// candidate set with a single SOQL query.
func (r *Repository) FindAccountsByName(ctx context.Context, names []string) ([]crm.Account, error) {
	if len(names) == 0 {
		return nil, nil
	}
	soql := fmt.Sprintf(
		"SELECT Id, Name, Industry, Description FROM Account WHERE Name IN (%s)",
		soqlStringList(names),
	)
	return queryRecords[crm.Account](ctx, r.client, soql)
}

// SaveAccounts persists a batch of accounts: records without an ID are
// inserted, the rest updated.
func (r *Repository) SaveAccounts(ctx context.Context, accounts []crm.Account) ([]crm.Account, error) {
	return saveRecords(ctx, r.client, "Account", accounts,
		func(a *crm.Account) *string { return &a.ID })
}

// SaveContacts persists a batch of contacts.
func (r *Repository) SaveContacts(ctx context.Context, contacts []crm.Contact) ([]crm.Contact, error) {
	return saveRecords(ctx, r.client, "Contact", contacts,
		func(c *crm.Contact) *string { return &c.ID })
}

// FindOpportunitiesByName bulk fetches the opportunities under the
// given account whose names are in the candidate set.
func (r *Repository) FindOpportunitiesByName(ctx context.Context, accountID string, names []string) ([]crm.Opportunity, error) {
	if len(names) == 0 {
		return nil, nil
	}
	soql := fmt.Sprintf(
		"SELECT Id, AccountId, Name, StageName, CloseDate, Amount FROM Opportunity WHERE AccountId = %s AND Name IN (%s)",
		soqlQuote(accountID),
		soqlStringList(names),
	)
	return queryRecords[crm.Opportunity](ctx, r.client, soql)
}

// SaveOpportunities persists a batch of opportunities.
func (r *Repository) SaveOpportunities(ctx context.Context, opps []crm.Opportunity) ([]crm.Opportunity, error) {
	return saveRecords(ctx, r.client, "Opportunity", opps,
		func(o *crm.Opportunity) *string { return &o.ID })
}

// SaveLeads persists a batch of leads.
func (r *Repository) SaveLeads(ctx context.Context, leads []crm.Lead) ([]crm.Lead, error) {
	return saveRecords(ctx, r.client, "Lead", leads,
		func(l *crm.Lead) *string { return &l.ID })
}

// DeleteLeads deletes a batch of leads by identifier.
func (r *Repository) DeleteLeads(ctx context.Context, leads []crm.Lead) error {
	ids := make([]string, len(leads))
	for i, l := range leads {
		ids[i] = l.ID
	}
	_, err := r.client.CollectionsDelete(ctx, ids, true)
	return err
}

// SaveCases persists a batch of cases.
func (r *Repository) SaveCases(ctx context.Context, cases []crm.Case) ([]crm.Case, error) {
	return saveRecords(ctx, r.client, "Case", cases,
		func(c *crm.Case) *string { return &c.ID })
}

// DeleteCases deletes a batch of cases by identifier.
func (r *Repository) DeleteCases(ctx context.Context, cases []crm.Case) error {
	ids := make([]string, len(cases))
	for i, c := range cases {
		ids[i] = c.ID
	}
	_, err := r.client.CollectionsDelete(ctx, ids, true)
	return err
}

// queryRecords runs a SOQL query and unmarshals each raw record into T.
func queryRecords[T any](ctx context.Context, c *Client, soql string) ([]T, error) {
	raw, err := c.Query(ctx, soql)
	if err != nil {
		return nil, err
	}
	records := make([]T, 0, len(raw))
	for _, r := range raw {
		var record T
		if err := json.Unmarshal(r, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal query record: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// saveRecords submits a batch through the sObject Collections API,
// splitting it into an insert batch and an update batch while
// preserving the input order in the returned slice. The id accessor
// exposes each record's identifier field for both the split and the
// copy-back of assigned identifiers.
func saveRecords[T any](ctx context.Context, c *Client, objectType string, records []T, id func(*T) *string) ([]T, error) {
	if len(records) == 0 {
		return nil, nil
	}

	saved := make([]T, len(records))
	copy(saved, records)

	var insertIdx, updateIdx []int
	for i := range saved {
		if *id(&saved[i]) == "" {
			insertIdx = append(insertIdx, i)
		} else {
			updateIdx = append(updateIdx, i)
		}
	}

	if len(insertIdx) > 0 {
		payloads := make([]map[string]any, len(insertIdx))
		for k, i := range insertIdx {
			payload, err := recordPayload(objectType, saved[i])
			if err != nil {
				return nil, err
			}
			payloads[k] = payload
		}
		results, err := c.CollectionsInsert(ctx, payloads, true)
		if err != nil {
			return nil, fmt.Errorf("%s batch insert: %w", objectType, err)
		}
		if len(results) != len(insertIdx) {
			return nil, fmt.Errorf("%s batch insert: got %d results for %d records",
				objectType, len(results), len(insertIdx))
		}
		for k, i := range insertIdx {
			*id(&saved[i]) = results[k].ID
		}
	}

	if len(updateIdx) > 0 {
		payloads := make([]map[string]any, len(updateIdx))
		for k, i := range updateIdx {
			payload, err := recordPayload(objectType, saved[i])
			if err != nil {
				return nil, err
			}
			payloads[k] = payload
		}
		if _, err := c.CollectionsUpdate(ctx, payloads, true); err != nil {
			return nil, fmt.Errorf("%s batch update: %w", objectType, err)
		}
	}

	return saved, nil
}

// recordPayload converts a typed record into the map form the
// Collections API expects, adding the required attributes entry.
func recordPayload(objectType string, record any) (map[string]any, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s record: %w", objectType, err)
	}
	var payload map[string]any
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, fmt.Errorf("failed to build %s payload: %w", objectType, err)
	}
	payload["attributes"] = map[string]string{"type": objectType}
	return payload, nil
}

// soqlQuote returns s as a single-quoted SOQL string literal with
// backslashes and quotes escaped.
func soqlQuote(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + replacer.Replace(s) + "'"
}

// soqlStringList renders a comma-separated list of quoted SOQL string
// literals for use in an IN clause.
func soqlStringList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = soqlQuote(v)
	}
	return strings.Join(quoted, ", ")
}
