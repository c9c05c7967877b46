package crm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestResolveAccounts_Scenario covers the canonical case: two candidate
// names of which one already exists.
func TestResolveAccounts_Scenario(t *testing.T) {
	existing := LookupAccountsByName([]Account{
		{ID: "001xx000003DGb1AAG", Name: "Doe", Industry: "Consulting"},
	})

	got := ResolveAccounts([]string{"Doe", "Jane"}, existing)

	want := []Account{
		{ID: "001xx000003DGb1AAG", Name: "Doe", Industry: "Consulting"},
		{Name: "Jane"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("resolved accounts mismatch (-want +got):\n%s", diff)
	}
}

// TestResolveAccounts_Counts checks that N candidates of which K exist
// resolve to exactly N records, K identity-preserved and N-K stubs
// carrying only the key field.
func TestResolveAccounts_Counts(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e"}
	existing := LookupAccountsByName([]Account{
		{ID: "001-b", Name: "b", Description: "kept"},
		{ID: "001-d", Name: "d"},
	})

	got := ResolveAccounts(names, existing)

	if gotLen, want := len(got), len(names); gotLen != want {
		t.Fatalf("got %d resolved records, want %d", gotLen, want)
	}
	var reused, stubs int
	for _, a := range got {
		if a.ID != "" {
			reused++
			if _, ok := existing[a.Name]; !ok {
				t.Errorf("record %q has an ID but was not in the lookup", a.Name)
			}
			continue
		}
		stubs++
		if a.Industry != "" || a.Description != "" {
			t.Errorf("stub %q has fields other than the key set: %+v", a.Name, a)
		}
	}
	if got, want := reused, 2; got != want {
		t.Errorf("got %d reused records, want %d", got, want)
	}
	if got, want := stubs, 3; got != want {
		t.Errorf("got %d new stubs, want %d", got, want)
	}
}

// TestResolveAccounts_DuplicateCandidates checks that duplicate keys in
// the candidate set never produce two stubs.
func TestResolveAccounts_DuplicateCandidates(t *testing.T) {
	got := ResolveAccounts([]string{"x", "x", "y", "x"}, map[string]Account{})
	if gotLen, want := len(got), 2; gotLen != want {
		t.Fatalf("got %d records for duplicate candidates, want %d", gotLen, want)
	}
}

// TestLookupAccountsByName checks that at most one representative per
// key is kept, with the first record winning.
func TestLookupAccountsByName(t *testing.T) {
	lookup := LookupAccountsByName([]Account{
		{ID: "001-1", Name: "dup"},
		{ID: "001-2", Name: "dup"},
		{ID: "001-3", Name: "other"},
	})
	if got, want := len(lookup), 2; got != want {
		t.Fatalf("got %d lookup entries, want %d", got, want)
	}
	if got, want := lookup["dup"].ID, "001-1"; got != want {
		t.Errorf("got representative %q for duplicated key, want %q", got, want)
	}
}

func TestResolveOpportunities(t *testing.T) {
	const accountID = "001xx000003DGb1AAG"
	existing := LookupOpportunitiesByName([]Opportunity{
		{ID: "006-1", AccountID: accountID, Name: "renewal", StageName: "Closed Won"},
	})

	got := ResolveOpportunities(accountID, []string{"renewal", "expansion"}, existing)

	want := []Opportunity{
		{ID: "006-1", AccountID: accountID, Name: "renewal", StageName: "Closed Won"},
		{AccountID: accountID, Name: "expansion"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("resolved opportunities mismatch (-want +got):\n%s", diff)
	}
}
