package model

import "time"

// ISODate is the layout of every role date.
const ISODate = "2006-01-02"

// Year window accepted for role dates.
const (
	MinRoleYear = 1990
	MaxRoleYear = 2040
)

// Role names a semantic date inside a contract.
type Role string

const (
	RoleEffective   Role = "effective"
	RoleExpiration  Role = "expiration"
	RoleSignature   Role = "signature"
	RoleRenewal     Role = "renewal"
	RoleTermination Role = "termination"
	RoleReview      Role = "review"
)

// Roles is the fixed resolution order of date roles.
var Roles = []Role{RoleEffective, RoleExpiration, RoleSignature, RoleRenewal, RoleTermination, RoleReview}

// DateRoles holds one optional ISO date per role. Empty means not found.
type DateRoles struct {
	Effective   string `json:"effective_date"`
	Expiration  string `json:"expiration_date"`
	Signature   string `json:"signature_date"`
	Renewal     string `json:"renewal_date"`
	Termination string `json:"termination_date"`
	Review      string `json:"review_date"`
}

// Get returns the date stored for role.
func (d DateRoles) Get(role Role) string {
	switch role {
	case RoleEffective:
		return d.Effective
	case RoleExpiration:
		return d.Expiration
	case RoleSignature:
		return d.Signature
	case RoleRenewal:
		return d.Renewal
	case RoleTermination:
		return d.Termination
	case RoleReview:
		return d.Review
	}
	return ""
}

// Set stores date for role. Dates that are not valid role dates are ignored
// and Set reports false.
func (d *DateRoles) Set(role Role, date string) bool {
	if !ValidRoleDate(date) {
		return false
	}
	switch role {
	case RoleEffective:
		d.Effective = date
	case RoleExpiration:
		d.Expiration = date
	case RoleSignature:
		d.Signature = date
	case RoleRenewal:
		d.Renewal = date
	case RoleTermination:
		d.Termination = date
	case RoleReview:
		d.Review = date
	default:
		return false
	}
	return true
}

// Found lists the roles that carry a date, in resolution order.
func (d DateRoles) Found() []Role {
	var out []Role
	for _, r := range Roles {
		if d.Get(r) != "" {
			out = append(out, r)
		}
	}
	return out
}

// ValidRoleDate reports whether s is a YYYY-MM-DD calendar date inside the role window.
func ValidRoleDate(s string) bool {
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return false
	}
	return t.Year() >= MinRoleYear && t.Year() <= MaxRoleYear
}
