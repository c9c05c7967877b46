package crm

import "context"

// Repository is the persistence surface the service operations run
// against. The production implementation is the Salesforce REST client
// adapter; tests substitute an in-memory double.
//
// Save semantics follow the platform: records with an empty ID are
// inserted and receive a platform-assigned identifier, records with an
// ID are updated in place. The returned slice preserves input order.
// Platform-side failures (validation errors, missing required fields,
// duplicate violations) propagate to the caller; there is no retry and
// no partial-failure recovery here.
type Repository interface {
	FindAccountsByName(ctx context.Context, names []string) ([]Account, error)
	SaveAccounts(ctx context.Context, accounts []Account) ([]Account, error)

	SaveContacts(ctx context.Context, contacts []Contact) ([]Contact, error)

	FindOpportunitiesByName(ctx context.Context, accountID string, names []string) ([]Opportunity, error)
	SaveOpportunities(ctx context.Context, opps []Opportunity) ([]Opportunity, error)

	SaveLeads(ctx context.Context, leads []Lead) ([]Lead, error)
	DeleteLeads(ctx context.Context, leads []Lead) error

	SaveCases(ctx context.Context, cases []Case) ([]Case, error)
	DeleteCases(ctx context.Context, cases []Case) error
}
