package crm

import "time"

// Fallback default field values for opportunities, used when the
// configuration leaves them unset.
const (
	DefaultOpportunityStage   = "Qualification"
	DefaultOpportunityAmount  = 50000
	DefaultCloseDateOffsetMon = 3
)

// OpportunityDefaults is a set of default field values applied
// uniformly to a batch of opportunities before persisting. The close
// date is computed as an offset in months from the date of
// application.
type OpportunityDefaults struct {
	Stage             string
	Amount            float64
	CloseDateOffsetMo int
}

// withFallbacks returns the defaults with zero values replaced by the
// package fallbacks.
func (d OpportunityDefaults) withFallbacks() OpportunityDefaults {
	if d.Stage == "" {
		d.Stage = DefaultOpportunityStage
	}
	if d.Amount == 0 {
		d.Amount = DefaultOpportunityAmount
	}
	if d.CloseDateOffsetMo == 0 {
		d.CloseDateOffsetMo = DefaultCloseDateOffsetMon
	}
	return d
}

// Apply overwrites the stage, close date and amount of every
// opportunity in the batch with the default values, regardless of any
// prior field values. asOf anchors the close date calculation,
// normally time.Now().
func (d OpportunityDefaults) Apply(opps []Opportunity, asOf time.Time) {
	d = d.withFallbacks()
	closeDate := Date{asOf.AddDate(0, d.CloseDateOffsetMo, 0)}
	for i := range opps {
		opps[i].StageName = d.Stage
		opps[i].CloseDate = closeDate
		opps[i].Amount = d.Amount
	}
}
