package domain

// UserGroup is the internal classification derived from account type plus
// education history. It only exists to select which determination branch
// applies; it is persisted on the record for traceability.
type UserGroup int

const (
	UserGroupOTStudent         UserGroup = 1
	UserGroupOTAStudent        UserGroup = 2
	UserGroupOTStudentNewGrad  UserGroup = 3
	UserGroupOTAStudentNewGrad UserGroup = 4
	UserGroupOT                UserGroup = 5
	UserGroupOTA               UserGroup = 6
	UserGroupVendorAdvertiser  UserGroup = 7
	UserGroupOther             UserGroup = 8
	UserGroupAffiliate         UserGroup = 9
)

var userGroupNames = map[UserGroup]string{
	UserGroupOTStudent:         "OT Student",
	UserGroupOTAStudent:        "OTA Student",
	UserGroupOTStudentNewGrad:  "OT Student New Grad",
	UserGroupOTAStudentNewGrad: "OTA Student New Grad",
	UserGroupOT:                "Occupational Therapist",
	UserGroupOTA:               "Occupational Therapist Assistant",
	UserGroupVendorAdvertiser:  "Vendor / Advertiser / Recruiter",
	UserGroupOther:             "Other",
	UserGroupAffiliate:         "Affiliate",
}

func (g UserGroup) Valid() bool {
	_, ok := userGroupNames[g]
	return ok
}

func (g UserGroup) String() string {
	if s, ok := userGroupNames[g]; ok {
		return s
	}
	return "Unknown"
}
