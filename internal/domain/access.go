package domain

// Privilege is the record-level permission tier. New records default to Owner.
type Privilege int

const (
	PrivilegeOwner Privilege = 1
	PrivilegeAdmin Privilege = 2
	PrivilegeMain  Privilege = 3
)

func (p Privilege) Valid() bool {
	return p == PrivilegeOwner || p == PrivilegeAdmin || p == PrivilegeMain
}

func (p Privilege) String() string {
	switch p {
	case PrivilegeOwner:
		return "Owner"
	case PrivilegeAdmin:
		return "Admin"
	case PrivilegeMain:
		return "Main"
	}
	return "Unknown"
}

// AccessModifier controls record visibility. New records default to Private.
type AccessModifier int

const (
	AccessPublic    AccessModifier = 1
	AccessProtected AccessModifier = 2
	AccessPrivate   AccessModifier = 3
)

func (a AccessModifier) Valid() bool {
	return a == AccessPublic || a == AccessProtected || a == AccessPrivate
}

func (a AccessModifier) String() string {
	switch a {
	case AccessPublic:
		return "Public"
	case AccessProtected:
		return "Protected"
	case AccessPrivate:
		return "Private"
	}
	return "Unknown"
}
