package domain

// Category is the final membership classification. It is derived by the
// determination table from (UserGroup, eligibility answer) and is never set
// directly by an end user.
type Category int

const (
	CategoryOTPractising    Category = 1
	CategoryOTNonPractising Category = 2
	CategoryOTRetired       Category = 3
	CategoryOTNewGrad       Category = 4
	CategoryOTLife          Category = 5

	CategoryOTAPractising    Category = 6
	CategoryOTANonPractising Category = 7
	CategoryOTARetired       Category = 8
	CategoryOTANewGrad       Category = 9
	CategoryOTALife          Category = 10

	CategoryOTStudent  Category = 11
	CategoryOTAStudent Category = 12

	CategoryAssociate Category = 13

	CategoryAffiliatePrimary Category = 14
	CategoryAffiliatePremium Category = 15
)

var categoryNames = map[Category]string{
	CategoryOTPractising:     "OT Practising",
	CategoryOTNonPractising:  "OT Non-Practising",
	CategoryOTRetired:        "OT Retired",
	CategoryOTNewGrad:        "OT New Grad",
	CategoryOTLife:           "OT Life",
	CategoryOTAPractising:    "OTA Practising",
	CategoryOTANonPractising: "OTA Non-Practising",
	CategoryOTARetired:       "OTA Retired",
	CategoryOTANewGrad:       "OTA New Grad",
	CategoryOTALife:          "OTA Life",
	CategoryOTStudent:        "OT Student",
	CategoryOTAStudent:       "OTA Student",
	CategoryAssociate:        "Associate",
	CategoryAffiliatePrimary: "Affiliate Primary",
	CategoryAffiliatePremium: "Affiliate Premium",
}

func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "Unknown"
}

// IsRetirement reports whether the category carries retirement semantics
// (and therefore requires a retirement start date).
func (c Category) IsRetirement() bool {
	return c == CategoryOTRetired || c == CategoryOTARetired
}
