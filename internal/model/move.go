package model

import "gopkg.in/guregu/null.v3"

// Move is a single action a Pokémon can perform in battle or in contests.
//
// Accuracy, EffectChance, PP and Power are null upstream when they do not
// apply (status moves have no power, some moves never miss). Accuracy is a
// percentage in [0,100] and Priority ranges over [-8,8]; neither is checked.
type Move struct {
	ID                 int                    `json:"id"`
	Name               string                 `json:"name"`
	Accuracy           null.Int               `json:"accuracy"`
	EffectChance       null.Int               `json:"effect_chance"`
	PP                 null.Int               `json:"pp"`
	Priority           int                    `json:"priority"`
	Power              null.Int               `json:"power"`
	ContestCombos      *ContestComboSets      `json:"contest_combos"`
	ContestType        *NamedAPIResource      `json:"contest_type"`
	ContestEffect      *APIResource           `json:"contest_effect"`
	SuperContestEffect *APIResource           `json:"super_contest_effect"`
	DamageClass        NamedAPIResource       `json:"damage_class"`
	EffectEntries      []VerboseEffect        `json:"effect_entries"`
	EffectChanges      []AbilityEffectChange  `json:"effect_changes"`
	FlavorTextEntries  []MoveFlavorText       `json:"flavor_text_entries"`
	Generation         NamedAPIResource       `json:"generation"`
	LearnedByPokemon   []NamedAPIResource     `json:"learned_by_pokemon"`
	Machines           []MachineVersionDetail `json:"machines"`
	Meta               *MoveMetaData          `json:"meta"`
	Names              []Name                 `json:"names"`
	PastValues         []PastMoveStatValues   `json:"past_values"`
	StatChanges        []MoveStatChange       `json:"stat_changes"`
	Target             NamedAPIResource       `json:"target"`
	Type               NamedAPIResource       `json:"type"`
}

// ContestComboSets groups the combo details for normal and super contests.
type ContestComboSets struct {
	Normal *ContestComboDetail `json:"normal"`
	Super  *ContestComboDetail `json:"super"`
}

// ContestComboDetail lists moves that grant extra appeal when used right
// before or right after the owning move.
type ContestComboDetail struct {
	UseBefore []NamedAPIResource `json:"use_before"`
	UseAfter  []NamedAPIResource `json:"use_after"`
}

// MoveFlavorText is the in-game description of a move for one language and
// version group.
type MoveFlavorText struct {
	FlavorText   string           `json:"flavor_text"`
	Language     NamedAPIResource `json:"language"`
	VersionGroup NamedAPIResource `json:"version_group"`
}

// MoveMetaData holds the combat properties of a move.
type MoveMetaData struct {
	Ailment  NamedAPIResource `json:"ailment"`
	Category NamedAPIResource `json:"category"`
	// Hit and turn ranges are null when the move hits once / lasts one turn.
	MinHits  null.Int `json:"min_hits"`
	MaxHits  null.Int `json:"max_hits"`
	MinTurns null.Int `json:"min_turns"`
	MaxTurns null.Int `json:"max_turns"`
	// Drain is HP drained (positive) or recoil taken (negative), in percent of damage dealt.
	Drain int `json:"drain"`
	// Healing is HP restored to the user, in percent of its maximum HP.
	Healing       int `json:"healing"`
	CritRate      int `json:"crit_rate"`
	AilmentChance int `json:"ailment_chance"`
	FlinchChance  int `json:"flinch_chance"`
	StatChance    int `json:"stat_chance"`
}

// MoveStatChange is a stat delta caused by a move.
type MoveStatChange struct {
	Change int              `json:"change"`
	Stat   NamedAPIResource `json:"stat"`
}

// PastMoveStatValues is a snapshot of a move's values as they were before
// VersionGroup changed them. Null fields did not change.
type PastMoveStatValues struct {
	Accuracy      null.Int          `json:"accuracy"`
	EffectChance  null.Int          `json:"effect_chance"`
	Power         null.Int          `json:"power"`
	PP            null.Int          `json:"pp"`
	EffectEntries []VerboseEffect   `json:"effect_entries"`
	Type          *NamedAPIResource `json:"type"`
	VersionGroup  NamedAPIResource  `json:"version_group"`
}
