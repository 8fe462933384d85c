package domain

// AccountGroup is the account-level classification maintained by the
// membership platform. It is the first input to user-group resolution.
type AccountGroup int

const (
	AccountGroupOccupationalTherapist          AccountGroup = 1
	AccountGroupOccupationalTherapistAssistant AccountGroup = 2
	AccountGroupVendorAdvertiser               AccountGroup = 3
	AccountGroupOther                          AccountGroup = 4
)

func (g AccountGroup) Valid() bool {
	switch g {
	case AccountGroupOccupationalTherapist,
		AccountGroupOccupationalTherapistAssistant,
		AccountGroupVendorAdvertiser,
		AccountGroupOther:
		return true
	}
	return false
}

func (g AccountGroup) String() string {
	switch g {
	case AccountGroupOccupationalTherapist:
		return "Occupational Therapist"
	case AccountGroupOccupationalTherapistAssistant:
		return "Occupational Therapist Assistant"
	case AccountGroupVendorAdvertiser:
		return "Vendor / Advertiser"
	case AccountGroupOther:
		return "Other"
	}
	return "Unknown"
}

// AccountStatus is the lifecycle state of an account or affiliate.
type AccountStatus int

const (
	AccountStatusActive   AccountStatus = 1
	AccountStatusInactive AccountStatus = 2
)

func (s AccountStatus) String() string {
	switch s {
	case AccountStatusActive:
		return "Active"
	case AccountStatusInactive:
		return "Inactive"
	}
	return "Unknown"
}

// EducationCategory classifies an education record. The wire values are fixed
// by the platform schema: 0=Graduated, 1=Student, 2=NewGrad.
type EducationCategory int

const (
	EducationGraduated EducationCategory = 0
	EducationStudent   EducationCategory = 1
	EducationNewGrad   EducationCategory = 2
)

func (c EducationCategory) Valid() bool {
	return c == EducationGraduated || c == EducationStudent || c == EducationNewGrad
}

func (c EducationCategory) String() string {
	switch c {
	case EducationGraduated:
		return "Graduated"
	case EducationStudent:
		return "Student"
	case EducationNewGrad:
		return "New Grad"
	}
	return "Unknown"
}

// UserType distinguishes the two mutually exclusive kinds of end user a
// membership category can belong to.
type UserType string

const (
	UserTypeAccount   UserType = "account"
	UserTypeAffiliate UserType = "affiliate"
)

// UserRef identifies the resolved caller: exactly one kind, one GUID.
type UserRef struct {
	Type        UserType
	AccountID   AccountID   // set iff Type == UserTypeAccount
	AffiliateID AffiliateID // set iff Type == UserTypeAffiliate
}

func (u UserRef) IsAffiliate() bool { return u.Type == UserTypeAffiliate }

// Key returns a stable string form used for uniqueness-reservation keys.
func (u UserRef) Key() string {
	if u.Type == UserTypeAffiliate {
		return "affiliate:" + string(u.AffiliateID)
	}
	return "account:" + string(u.AccountID)
}
