// Package app is the central orchestrator for the training CLI. It
// coordinates configuration, the Salesforce API client, the local run
// log and the crm service operations.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"sfrecords/apiclients/salesforce"
	"sfrecords/config"
	"sfrecords/crm"
	"sfrecords/db"

	"github.com/google/uuid"
)

// App wires the application's components together per command
// invocation. Nothing is cached between invocations; every command
// loads its own configuration and authenticates its own client.
type App struct {
	log *slog.Logger
}

// New creates and returns a new App instance.
func New(logger *slog.Logger) *App {
	return &App{log: logger}
}

// session holds the per-command wiring.
type session struct {
	cfg     *config.Config
	client  *salesforce.Client
	service *crm.Service
	db      *db.DB
	runID   string
}

// setup loads configuration, authenticates the Salesforce client and
// opens the run log. The returned teardown closes the database.
func (a *App) setup(ctx context.Context, cfgPath string) (*session, func(), error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	client, err := salesforce.NewClient(ctx, cfg, a.log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create salesforce client: %w", err)
	}

	dbConn, err := db.New(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run log database: %w", err)
	}
	if err := dbConn.InitSchema(); err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to initialize run log schema: %w", err)
	}

	defaults := crm.OpportunityDefaults{
		Stage:             cfg.Defaults.OpportunityStage,
		Amount:            cfg.Defaults.OpportunityAmount,
		CloseDateOffsetMo: cfg.Defaults.CloseDateOffsetMonths,
	}
	service := crm.NewService(salesforce.NewRepository(client), defaults, a.log)

	s := &session{
		cfg:     cfg,
		client:  client,
		service: service,
		db:      dbConn,
		runID:   uuid.NewString(),
	}
	teardown := func() {
		_ = dbConn.Close()
	}
	return s, teardown, nil
}

// journal adds newly created org records to the local run log.
func (s *session) journal(ctx context.Context, objectType string, ids, naturalKeys []string) error {
	records := make([]db.CreatedRecord, len(ids))
	for i, id := range ids {
		records[i] = db.CreatedRecord{
			RecordID:   id,
			ObjectType: objectType,
			NaturalKey: naturalKeys[i],
			RunID:      s.runID,
		}
	}
	return s.db.LogCreated(ctx, records)
}

// journalAccounts journals accounts created as a side effect of
// another operation, so wipe covers them too.
func (s *session) journalAccounts(ctx context.Context, created []crm.Account) error {
	if len(created) == 0 {
		return nil
	}
	ids := make([]string, len(created))
	keys := make([]string, len(created))
	for i, account := range created {
		ids[i] = account.ID
		keys[i] = account.Name
	}
	return s.journal(ctx, "Account", ids, keys)
}

// Login orchestrates the OAuth2 login flow. It loads configuration and
// initiates the interactive authentication process.
func (a *App) Login(ctx context.Context, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	return salesforce.InitiateLogin(ctx, cfg)
}

// Wipe deletes all run-logged demo records from the org, then removes
// the local run log and token files.
func (a *App) Wipe(ctx context.Context, cfgPath string) error {
	s, teardown, err := a.setup(ctx, cfgPath)
	if err != nil {
		return err
	}
	defer teardown()

	created, err := s.db.ListCreated(ctx)
	if err != nil {
		return err
	}

	// The Collections API deletes at most 200 records per call.
	const chunkSize = 200
	for start := 0; start < len(created); start += chunkSize {
		end := min(start+chunkSize, len(created))
		ids := make([]string, 0, end-start)
		for _, r := range created[start:end] {
			ids = append(ids, r.RecordID)
		}
		response, delErr := s.client.CollectionsDelete(ctx, ids, false)
		// Forget the records the org did delete even when others in
		// the chunk failed, so a re-run doesn't retry them.
		var deleted []string
		for _, result := range response {
			if result.Success {
				deleted = append(deleted, result.ID)
			}
		}
		if err := s.db.Forget(ctx, deleted); err != nil {
			return err
		}
		if delErr != nil {
			return fmt.Errorf("failed to delete demo records from org: %w", delErr)
		}
	}
	a.log.Info(fmt.Sprintf("Wipe: removed %d demo records from the org", len(created)))

	teardown()
	a.log.Info(fmt.Sprintf("Deleting run log database at: %s", s.cfg.DatabasePath))
	if err := os.Remove(s.cfg.DatabasePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete run log database: %w", err)
	}
	a.log.Info(fmt.Sprintf("Deleting token file at: %s", s.cfg.Salesforce.TokenFilePath))
	if err := salesforce.DeleteToken(s.cfg.Salesforce.TokenFilePath); err != nil {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	a.log.Info("Wipe complete.")
	return nil
}

// CreateAccount constructs and inserts a single account.
func (a *App) CreateAccount(ctx context.Context, cfgPath, name, industry, description string) error {
	s, teardown, err := a.setup(ctx, cfgPath)
	if err != nil {
		return err
	}
	defer teardown()

	account, err := s.service.CreateAccount(ctx, name, industry, description)
	if err != nil {
		return err
	}
	return s.journal(ctx, "Account", []string{account.ID}, []string{account.Name})
}

// UpsertAccounts runs the find-or-create scenario over the given
// account names.
func (a *App) UpsertAccounts(ctx context.Context, cfgPath string, names []string) error {
	s, teardown, err := a.setup(ctx, cfgPath)
	if err != nil {
		return err
	}
	defer teardown()

	_, created, err := s.service.UpsertAccountsByName(ctx, names)
	if err != nil {
		return err
	}
	return s.journalAccounts(ctx, created)
}

// UpdateAccountDescriptions overwrites the description of the accounts
// with the given names.
func (a *App) UpdateAccountDescriptions(ctx context.Context, cfgPath string, names []string, description string) error {
	s, teardown, err := a.setup(ctx, cfgPath)
	if err != nil {
		return err
	}
	defer teardown()

	_, err = s.service.UpdateAccountDescriptions(ctx, names, description)
	return err
}

// AddContact attaches a single contact to the named account, creating
// the account first where necessary.
func (a *App) AddContact(ctx context.Context, cfgPath, accountName, lastName, firstName, title string) error {
	s, teardown, err := a.setup(ctx, cfgPath)
	if err != nil {
		return err
	}
	defer teardown()

	contacts, createdAccounts, err := s.service.AddContactsToAccounts(ctx, map[string][]crm.Contact{
		accountName: {{LastName: lastName, FirstName: firstName, Title: title}},
	})
	if err != nil {
		return err
	}
	if err := s.journalAccounts(ctx, createdAccounts); err != nil {
		return err
	}
	ids := make([]string, len(contacts))
	keys := make([]string, len(contacts))
	for i, contact := range contacts {
		ids[i] = contact.ID
		keys[i] = contact.LastName
	}
	return s.journal(ctx, "Contact", ids, keys)
}

// EnsureOpportunities finds or creates the named opportunities under
// the given account, applying the configured defaults.
func (a *App) EnsureOpportunities(ctx context.Context, cfgPath, accountName string, oppNames []string) error {
	s, teardown, err := a.setup(ctx, cfgPath)
	if err != nil {
		return err
	}
	defer teardown()

	_, created, createdAccounts, err := s.service.EnsureOpportunities(ctx, accountName, oppNames)
	if err != nil {
		return err
	}
	if err := s.journalAccounts(ctx, createdAccounts); err != nil {
		return err
	}
	ids := make([]string, len(created))
	keys := make([]string, len(created))
	for i, opp := range created {
		ids[i] = opp.ID
		keys[i] = opp.Name
	}
	return s.journal(ctx, "Opportunity", ids, keys)
}

// LeadRoundTrip inserts a lead and immediately deletes it.
func (a *App) LeadRoundTrip(ctx context.Context, cfgPath, lastName, company string) error {
	s, teardown, err := a.setup(ctx, cfgPath)
	if err != nil {
		return err
	}
	defer teardown()

	// Nothing to journal: the paired operation nets zero records.
	return s.service.InsertAndDeleteLead(ctx, lastName, company)
}

// CaseRoundTrip inserts a case and immediately deletes it.
func (a *App) CaseRoundTrip(ctx context.Context, cfgPath, subject, origin string) error {
	s, teardown, err := a.setup(ctx, cfgPath)
	if err != nil {
		return err
	}
	defer teardown()

	return s.service.InsertAndDeleteCase(ctx, subject, origin)
}
