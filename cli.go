package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// Applicator defines the interface for the core application logic.
// This allows the CLI to be tested independently of the main app implementation.
type Applicator interface {
	Login(ctx context.Context, cfgPath string) error
	Wipe(ctx context.Context, cfgPath string) error
	CreateAccount(ctx context.Context, cfgPath, name, industry, description string) error
	UpsertAccounts(ctx context.Context, cfgPath string, names []string) error
	UpdateAccountDescriptions(ctx context.Context, cfgPath string, names []string, description string) error
	AddContact(ctx context.Context, cfgPath, accountName, lastName, firstName, title string) error
	EnsureOpportunities(ctx context.Context, cfgPath, accountName string, oppNames []string) error
	LeadRoundTrip(ctx context.Context, cfgPath, lastName, company string) error
	CaseRoundTrip(ctx context.Context, cfgPath, subject, origin string) error
}

// BuildCLI creates the full CLI command structure for the application.
// It injects the core application logic (the Applicator) into the command actions.
func BuildCLI(app Applicator) *cli.Command {
	// Define flags that are common across multiple commands.
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "config.yaml",
		Usage:   "path to the configuration file",
	}

	namesFlag := &cli.StringSliceFlag{
		Name:    "names",
		Usage:   "account names to operate on (repeat or comma-separate)",
		Aliases: []string{"n"},
	}

	// Define all application commands.
	loginCmd := &cli.Command{
		Name:  "login",
		Usage: "Authorize the application with your Salesforce org",
		Flags: []cli.Flag{configFlag},
		Action: func(ctx context.Context, c *cli.Command) error {
			return app.Login(ctx, c.String("config"))
		},
	}

	wipeCmd := &cli.Command{
		Name:  "wipe",
		Usage: "Delete run-logged demo records from the org and remove local state",
		Flags: []cli.Flag{configFlag},
		Action: func(ctx context.Context, c *cli.Command) error {
			return app.Wipe(ctx, c.String("config"))
		},
	}

	accountCreateCmd := &cli.Command{
		Name:  "account-create",
		Usage: "Create a single account",
		Flags: []cli.Flag{
			configFlag,
			&cli.StringFlag{Name: "name", Usage: "the account name", Required: true},
			&cli.StringFlag{Name: "industry", Usage: "the account industry"},
			&cli.StringFlag{Name: "description", Usage: "the account description"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return app.CreateAccount(ctx, c.String("config"),
				c.String("name"), c.String("industry"), c.String("description"))
		},
	}

	accountsUpsertCmd := &cli.Command{
		Name:    "accounts-upsert",
		Usage:   "Find or create accounts by name without duplicating existing ones",
		Aliases: []string{"au"},
		Flags:   []cli.Flag{configFlag, namesFlag},
		Action: func(ctx context.Context, c *cli.Command) error {
			names := c.StringSlice("names")
			if len(names) == 0 {
				return fmt.Errorf("at least one --names value is required")
			}
			return app.UpsertAccounts(ctx, c.String("config"), names)
		},
	}

	accountsDescribeCmd := &cli.Command{
		Name:  "accounts-describe",
		Usage: "Overwrite the description of the named accounts",
		Flags: []cli.Flag{
			configFlag,
			namesFlag,
			&cli.StringFlag{Name: "description", Usage: "the new description", Required: true},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			names := c.StringSlice("names")
			if len(names) == 0 {
				return fmt.Errorf("at least one --names value is required")
			}
			return app.UpdateAccountDescriptions(ctx, c.String("config"), names, c.String("description"))
		},
	}

	contactAddCmd := &cli.Command{
		Name:  "contact-add",
		Usage: "Add a contact to an account, creating the account if needed",
		Flags: []cli.Flag{
			configFlag,
			&cli.StringFlag{Name: "account", Usage: "the parent account name", Required: true},
			&cli.StringFlag{Name: "last", Usage: "the contact's last name", Required: true},
			&cli.StringFlag{Name: "first", Usage: "the contact's first name"},
			&cli.StringFlag{Name: "title", Usage: "the contact's title"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return app.AddContact(ctx, c.String("config"),
				c.String("account"), c.String("last"), c.String("first"), c.String("title"))
		},
	}

	opportunitiesEnsureCmd := &cli.Command{
		Name:    "opportunities-ensure",
		Usage:   "Find or create opportunities on an account with default stage, amount and close date",
		Aliases: []string{"oe"},
		Flags: []cli.Flag{
			configFlag,
			&cli.StringFlag{Name: "account", Usage: "the parent account name", Required: true},
			namesFlag,
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			names := c.StringSlice("names")
			if len(names) == 0 {
				return fmt.Errorf("at least one --names value is required")
			}
			return app.EnsureOpportunities(ctx, c.String("config"), c.String("account"), names)
		},
	}

	leadRoundTripCmd := &cli.Command{
		Name:  "lead-roundtrip",
		Usage: "Insert a lead and immediately delete it again",
		Flags: []cli.Flag{
			configFlag,
			&cli.StringFlag{Name: "last", Usage: "the lead's last name", Value: "Trainee"},
			&cli.StringFlag{Name: "company", Usage: "the lead's company", Value: "Training Co"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return app.LeadRoundTrip(ctx, c.String("config"), c.String("last"), c.String("company"))
		},
	}

	caseRoundTripCmd := &cli.Command{
		Name:  "case-roundtrip",
		Usage: "Insert a case and immediately delete it again",
		Flags: []cli.Flag{
			configFlag,
			&cli.StringFlag{Name: "subject", Usage: "the case subject", Value: "Training demo case"},
			&cli.StringFlag{Name: "origin", Usage: "the case origin", Value: "Web"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return app.CaseRoundTrip(ctx, c.String("config"), c.String("subject"), c.String("origin"))
		},
	}

	// Assemble the root command.
	rootCmd := &cli.Command{
		Name:  "sfrecords",
		Usage: "A training CLI for Salesforce record-manipulation scenarios",
		Commands: []*cli.Command{
			loginCmd, wipeCmd, accountCreateCmd, accountsUpsertCmd, accountsDescribeCmd,
			contactAddCmd, opportunitiesEnsureCmd, leadRoundTripCmd, caseRoundTripCmd,
		},
	}

	return rootCmd
}
