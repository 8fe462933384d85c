package domain

// SubjectID is the authenticated subject extracted from JWT claims (typically "sub").
// We model it as an opaque identifier: its format is controlled by the IdP.
type SubjectID string

// AccountID is the platform GUID of an account (individual) record.
type AccountID string

// AffiliateID is the platform GUID of an affiliate (organization) record.
type AffiliateID string

// CategoryID is the platform GUID of a membership-category record.
// The human-facing autonumber ("osot-cat-NNNNNNN") lives on the record itself.
type CategoryID string
