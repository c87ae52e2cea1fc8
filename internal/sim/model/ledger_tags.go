package model

type TxCategory int

const (
	TxWages TxCategory = iota
	TxStaffSalaries
	TxMaintenance
	TxTavernIncome
	TxMissionReward
	TxLoanDisbursement
	TxLoanPayment
	TxHiringFee
	TxFacilityUpgrade
	TxPatronGrant
	TxLootSale
)

var txCategoryNames = []string{
	"wages", "staff_salaries", "maintenance", "tavern_income", "mission_reward",
	"loan_disbursement", "loan_payment", "hiring_fee", "facility_upgrade", "patron_grant", "loot_sale",
}

func AllTxCategories() []TxCategory {
	out := make([]TxCategory, len(txCategoryNames))
	for i := range out {
		out[i] = TxCategory(i)
	}
	return out
}

func (c TxCategory) String() string { return tagOf(txCategoryNames, int(c)) }
func (c TxCategory) Valid() bool    { return validTag(txCategoryNames, int(c)) }

func (c TxCategory) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *TxCategory) UnmarshalText(b []byte) error {
	i, err := parseTag("transaction category", txCategoryNames, string(b))
	if err != nil {
		return err
	}
	*c = TxCategory(i)
	return nil
}

// ConfidenceBand is ordered worst to best.
type ConfidenceBand int

const (
	BandFailing ConfidenceBand = iota
	BandCritical
	BandConcerning
	BandStable
	BandSecure
)

var confidenceBandNames = []string{"failing", "critical", "concerning", "stable", "secure"}

func (b ConfidenceBand) String() string { return tagOf(confidenceBandNames, int(b)) }
func (b ConfidenceBand) Valid() bool    { return validTag(confidenceBandNames, int(b)) }

func (b ConfidenceBand) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *ConfidenceBand) UnmarshalText(raw []byte) error {
	i, err := parseTag("confidence band", confidenceBandNames, string(raw))
	if err != nil {
		return err
	}
	*b = ConfidenceBand(i)
	return nil
}
