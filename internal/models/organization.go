package models

type OrganizationScheme string

const (
	SchemeEDRPOU OrganizationScheme = "UA-EDR"
	SchemeIPN    OrganizationScheme = "UA-IPN"
)

type Identifier struct {
	Scheme OrganizationScheme `json:"scheme"`
	Id     string             `json:"id"`
}

type ContactPoint struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type Organization struct {
	Name         string       `json:"name"`
	Identifier   Identifier   `json:"identifier"`
	ContactPoint ContactPoint `json:"contactPoint"`
}

func ValidOrganizationScheme(s OrganizationScheme) bool {
	switch s {
	case SchemeEDRPOU, SchemeIPN:
		return true
	default:
		return false
	}
}
