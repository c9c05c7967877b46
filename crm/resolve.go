package crm

// resolve.go implements the find-or-create matcher. The caller performs
// one bulk fetch of all records whose natural key is in the candidate
// set, builds a lookup with one of the Lookup* helpers, and resolves
// every candidate against that single map. This keeps the query count
// at one per batch rather than one per candidate.
//
// Resolution has no side effects; nothing is persisted until the
// resolved batch is handed to a Repository.

// LookupAccountsByName builds a name-keyed lookup from pre-fetched
// accounts. At most one representative is kept per name; the first
// record seen for a name wins.
func LookupAccountsByName(accounts []Account) map[string]Account {
	lookup := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		if _, ok := lookup[a.Name]; !ok {
			lookup[a.Name] = a
		}
	}
	return lookup
}

// LookupOpportunitiesByName builds a name-keyed lookup from pre-fetched
// opportunities, keeping the first record seen per name.
func LookupOpportunitiesByName(opps []Opportunity) map[string]Opportunity {
	lookup := make(map[string]Opportunity, len(opps))
	for _, o := range opps {
		if _, ok := lookup[o.Name]; !ok {
			lookup[o.Name] = o
		}
	}
	return lookup
}

// ResolveAccounts returns one account per candidate name: the existing
// record where the name is present in the lookup, otherwise a new stub
// with only the Name field set. Duplicate candidate names yield a
// single entry, so no two stubs are ever created for the same key.
func ResolveAccounts(names []string, existing map[string]Account) []Account {
	resolved := make([]Account, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if a, ok := existing[name]; ok {
			resolved = append(resolved, a)
			continue
		}
		resolved = append(resolved, Account{Name: name})
	}
	return resolved
}

// ResolveOpportunities returns one opportunity per candidate name
// within the given account: the existing record where present in the
// lookup, otherwise a new stub carrying only the name and the parent
// account ID.
func ResolveOpportunities(accountID string, names []string, existing map[string]Opportunity) []Opportunity {
	resolved := make([]Opportunity, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if o, ok := existing[name]; ok {
			resolved = append(resolved, o)
			continue
		}
		resolved = append(resolved, Opportunity{Name: name, AccountID: accountID})
	}
	return resolved
}
