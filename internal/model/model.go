// Package model contains the JSON shapes served by the PokeAPI move endpoints.
// I keep it lean and focused on data shapes without behavior: values are
// populated wholesale by encoding/json and never mutated afterwards.
package model

// Kind is the upstream path segment identifying a resource family.
type Kind string

const (
	KindMove            Kind = "move"
	KindMoveAilment     Kind = "move-ailment"
	KindMoveBattleStyle Kind = "move-battle-style"
	KindMoveCategory    Kind = "move-category"
	KindMoveDamageClass Kind = "move-damage-class"
	KindMoveLearnMethod Kind = "move-learn-method"
	KindMoveTarget      Kind = "move-target"
)

// Kinds lists every resource family the service exposes, in route order.
func Kinds() []Kind {
	return []Kind{
		KindMove,
		KindMoveAilment,
		KindMoveBattleStyle,
		KindMoveCategory,
		KindMoveDamageClass,
		KindMoveLearnMethod,
		KindMoveTarget,
	}
}

// ParseKind reports whether s names a known resource family.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}
