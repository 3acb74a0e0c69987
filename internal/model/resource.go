package model

import "gopkg.in/guregu/null.v3"

// NamedAPIResource is a lightweight pointer to another resource. It is
// resolved on demand by fetching URL, never embedded.
type NamedAPIResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// APIResource is a pointer to a resource that has no name of its own.
type APIResource struct {
	URL string `json:"url"`
}

// NamedAPIResourceList is the envelope returned by list endpoints.
type NamedAPIResourceList struct {
	Count    int                `json:"count"`
	Next     null.String        `json:"next"`
	Previous null.String        `json:"previous"`
	Results  []NamedAPIResource `json:"results"`
}

// Name is a resource name localized to one language.
type Name struct {
	Name     string           `json:"name"`
	Language NamedAPIResource `json:"language"`
}

// Description is a resource description localized to one language.
type Description struct {
	Description string           `json:"description"`
	Language    NamedAPIResource `json:"language"`
}

// Effect is a localized effect text.
type Effect struct {
	Effect   string           `json:"effect"`
	Language NamedAPIResource `json:"language"`
}

// VerboseEffect carries both the full and the short form of an effect text.
type VerboseEffect struct {
	Effect      string           `json:"effect"`
	ShortEffect string           `json:"short_effect"`
	Language    NamedAPIResource `json:"language"`
}

// AbilityEffectChange records how an effect read in an earlier version group.
type AbilityEffectChange struct {
	EffectEntries []Effect         `json:"effect_entries"`
	VersionGroup  NamedAPIResource `json:"version_group"`
}

// MachineVersionDetail ties a TM/HM machine to the version group it exists in.
type MachineVersionDetail struct {
	Machine      APIResource      `json:"machine"`
	VersionGroup NamedAPIResource `json:"version_group"`
}
