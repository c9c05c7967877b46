package crm

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service exposes the record-manipulation training operations. Each
// operation is independent of the others: construct records, assign
// fields, and hand the batch to the injected Repository. Any platform
// failure propagates to the caller unmodified in meaning.
type Service struct {
	repo     Repository
	defaults OpportunityDefaults
	log      *slog.Logger
	now      func() time.Time
}

// NewService returns a Service running against the provided
// repository.
func NewService(repo Repository, defaults OpportunityDefaults, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		defaults: defaults,
		log:      logger,
		now:      time.Now,
	}
}

// CreateAccount constructs a single account, persists it and returns
// it with the platform-assigned identifier.
func (s *Service) CreateAccount(ctx context.Context, name, industry, description string) (Account, error) {
	account := Account{
		Name:        name,
		Industry:    industry,
		Description: description,
	}
	saved, err := s.repo.SaveAccounts(ctx, []Account{account})
	if err != nil {
		return Account{}, fmt.Errorf("create account %q: %w", name, err)
	}
	s.log.Info(fmt.Sprintf("CreateAccount: created account %q as %s", name, saved[0].ID))
	return saved[0], nil
}

// UpdateAccountDescriptions bulk fetches the accounts with the given
// names, overwrites their descriptions and persists the batch. It
// returns the updated accounts; names with no matching account are
// skipped.
func (s *Service) UpdateAccountDescriptions(ctx context.Context, names []string, description string) ([]Account, error) {
	accounts, err := s.repo.FindAccountsByName(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("find accounts for update: %w", err)
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	for i := range accounts {
		accounts[i].Description = description
	}
	saved, err := s.repo.SaveAccounts(ctx, accounts)
	if err != nil {
		return nil, fmt.Errorf("update account descriptions: %w", err)
	}
	s.log.Info(fmt.Sprintf("UpdateAccountDescriptions: updated %d of %d requested accounts", len(saved), len(names)))
	return saved, nil
}

// UpsertAccountsByName performs the find-or-create pattern over the
// candidate names: one bulk fetch of existing accounts, resolution of
// every candidate against the resulting lookup, then one save of the
// combined batch. Running the operation twice with the same name set
// creates no duplicate accounts on the second run.
//
// The returned created slice holds the subset of the batch newly
// constructed by this call, after ID assignment.
func (s *Service) UpsertAccountsByName(ctx context.Context, names []string) (all, created []Account, err error) {
	existingRecords, err := s.repo.FindAccountsByName(ctx, names)
	if err != nil {
		return nil, nil, fmt.Errorf("find existing accounts: %w", err)
	}
	existing := LookupAccountsByName(existingRecords)

	batch := ResolveAccounts(names, existing)
	saved, err := s.repo.SaveAccounts(ctx, batch)
	if err != nil {
		return nil, nil, fmt.Errorf("save resolved accounts: %w", err)
	}
	for _, a := range saved {
		if _, ok := existing[a.Name]; !ok {
			created = append(created, a)
		}
	}
	s.log.Info(fmt.Sprintf("UpsertAccountsByName: %d accounts, %d newly created", len(saved), len(created)))
	return saved, created, nil
}

// AddContactsToAccounts attaches the given contacts to their parent
// accounts, keyed by account name. Parent accounts are found or
// created first, then every contact is persisted carrying its parent's
// identifier. The parent lookup is a single bulk operation regardless
// of the number of contacts. Parent accounts newly created as a side
// effect are returned alongside the contacts so callers can track
// them.
func (s *Service) AddContactsToAccounts(ctx context.Context, contactsByAccount map[string][]Contact) (saved []Contact, createdAccounts []Account, err error) {
	if len(contactsByAccount) == 0 {
		return nil, nil, nil
	}
	names := make([]string, 0, len(contactsByAccount))
	for name := range contactsByAccount {
		names = append(names, name)
	}

	accounts, createdAccounts, err := s.UpsertAccountsByName(ctx, names)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve parent accounts: %w", err)
	}
	accountIDs := make(map[string]string, len(accounts))
	for _, a := range accounts {
		accountIDs[a.Name] = a.ID
	}

	var batch []Contact
	for name, contacts := range contactsByAccount {
		for _, c := range contacts {
			c.AccountID = accountIDs[name]
			batch = append(batch, c)
		}
	}
	saved, err = s.repo.SaveContacts(ctx, batch)
	if err != nil {
		return nil, nil, fmt.Errorf("save contacts: %w", err)
	}
	s.log.Info(fmt.Sprintf("AddContactsToAccounts: created %d contacts across %d accounts", len(saved), len(accounts)))
	return saved, createdAccounts, nil
}

// EnsureOpportunities finds or creates the named opportunities under
// the account with the given name, creating the account itself if
// necessary. The configured default field values are applied uniformly
// to the whole batch before persisting, overwriting any prior values.
// An account newly created as a side effect is returned in
// createdAccounts so callers can track it.
func (s *Service) EnsureOpportunities(ctx context.Context, accountName string, oppNames []string) (all, created []Opportunity, createdAccounts []Account, err error) {
	accounts, createdAccounts, err := s.UpsertAccountsByName(ctx, []string{accountName})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve account %q: %w", accountName, err)
	}
	account := accounts[0]

	existingRecords, err := s.repo.FindOpportunitiesByName(ctx, account.ID, oppNames)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("find existing opportunities: %w", err)
	}
	existing := LookupOpportunitiesByName(existingRecords)

	batch := ResolveOpportunities(account.ID, oppNames, existing)
	s.defaults.Apply(batch, s.now())

	saved, err := s.repo.SaveOpportunities(ctx, batch)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("save opportunities: %w", err)
	}
	for _, o := range saved {
		if _, ok := existing[o.Name]; !ok {
			created = append(created, o)
		}
	}
	s.log.Info(fmt.Sprintf("EnsureOpportunities: %d opportunities on %q, %d newly created", len(saved), accountName, len(created)))
	return saved, created, createdAccounts, nil
}

// InsertAndDeleteLead constructs a lead, persists it and immediately
// deletes it again, leaving no net new permanent records.
func (s *Service) InsertAndDeleteLead(ctx context.Context, lastName, company string) error {
	lead := Lead{
		LastName: lastName,
		Company:  company,
		Status:   "Open - Not Contacted",
	}
	saved, err := s.repo.SaveLeads(ctx, []Lead{lead})
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	s.log.Info(fmt.Sprintf("InsertAndDeleteLead: created lead %s, deleting", saved[0].ID))
	if err := s.repo.DeleteLeads(ctx, saved); err != nil {
		return fmt.Errorf("delete lead %s: %w", saved[0].ID, err)
	}
	return nil
}

// InsertAndDeleteCase constructs a case, persists it and immediately
// deletes it again. The constructed case is appended to the batch
// before persisting, matching the lead round trip.
func (s *Service) InsertAndDeleteCase(ctx context.Context, subject, origin string) error {
	c := Case{
		Subject: subject,
		Status:  "New",
		Origin:  origin,
	}
	saved, err := s.repo.SaveCases(ctx, []Case{c})
	if err != nil {
		return fmt.Errorf("insert case: %w", err)
	}
	s.log.Info(fmt.Sprintf("InsertAndDeleteCase: created case %s, deleting", saved[0].ID))
	if err := s.repo.DeleteCases(ctx, saved); err != nil {
		return fmt.Errorf("delete case %s: %w", saved[0].ID, err)
	}
	return nil
}
