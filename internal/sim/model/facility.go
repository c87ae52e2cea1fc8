package model

type FacilityKind int

const (
	FacilityBarracks FacilityKind = iota
	FacilityInfirmary
	FacilityTrainingGrounds
	FacilityTavern
	FacilityArmory
	FacilityLibrary
	FacilityVault

	FacilityCount
)

var facilityNames = []string{"barracks", "infirmary", "training_grounds", "tavern", "armory", "library", "vault"}

func AllFacilities() []FacilityKind {
	out := make([]FacilityKind, FacilityCount)
	for i := range out {
		out[i] = FacilityKind(i)
	}
	return out
}

func (k FacilityKind) String() string { return tagOf(facilityNames, int(k)) }
func (k FacilityKind) Valid() bool    { return k >= 0 && k < FacilityCount }

func (k FacilityKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *FacilityKind) UnmarshalText(b []byte) error {
	i, err := parseTag("facility", facilityNames, string(b))
	if err != nil {
		return err
	}
	*k = FacilityKind(i)
	return nil
}

func ParseFacility(s string) (FacilityKind, error) {
	var k FacilityKind
	err := k.UnmarshalText([]byte(s))
	return k, err
}
