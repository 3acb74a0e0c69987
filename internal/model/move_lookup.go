package model

// MoveAilment is a status condition a move may inflict, e.g. paralysis.
type MoveAilment struct {
	ID    int                `json:"id"`
	Name  string             `json:"name"`
	Moves []NamedAPIResource `json:"moves"`
	Names []Name             `json:"names"`
}

// MoveBattleStyle is a style used by Battle Palace / Battle Tent.
type MoveBattleStyle struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Names []Name `json:"names"`
}

// MoveCategory loosely groups moves by their effect, e.g. damage or ailment.
type MoveCategory struct {
	ID           int                `json:"id"`
	Name         string             `json:"name"`
	Moves        []NamedAPIResource `json:"moves"`
	Descriptions []Description      `json:"descriptions"`
}

// MoveDamageClass is physical, special or status.
type MoveDamageClass struct {
	ID           int                `json:"id"`
	Name         string             `json:"name"`
	Descriptions []Description      `json:"descriptions"`
	Moves        []NamedAPIResource `json:"moves"`
	Names        []Name             `json:"names"`
}

// MoveLearnMethod describes how a Pokémon learns a move.
type MoveLearnMethod struct {
	ID            int                `json:"id"`
	Name          string             `json:"name"`
	Descriptions  []Description      `json:"descriptions"`
	Names         []Name             `json:"names"`
	VersionGroups []NamedAPIResource `json:"version_groups"`
}

// MoveTarget says who receives the effects of a move.
type MoveTarget struct {
	ID           int                `json:"id"`
	Name         string             `json:"name"`
	Descriptions []Description      `json:"descriptions"`
	Moves        []NamedAPIResource `json:"moves"`
	Names        []Name             `json:"names"`
}
