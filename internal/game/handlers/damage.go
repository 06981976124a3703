// Package handlers holds the reusable handlers card definitions and the
// orchestrator register with the engine.
package handlers

import (
	"fmt"

	"github.com/magefree/hearthstone-go/internal/game/rules"
)

// FreezeOnDamage freezes every character damaged by owner. It matches the
// rules.HandlerFactory signature so minions can carry it as a desk handler.
func FreezeOnDamage(owner rules.Entity) *rules.Handler {
	return &rules.Handler{
		Name:  fmt.Sprintf("freeze_on_damage(%s)", owner),
		Kinds: []rules.Kind{rules.KindDamage},
		Owner: owner,
		Phase: rules.PhaseAfter,
		Condition: func(evt *rules.Event) bool {
			return evt.Source != nil && evt.Target != nil && evt.Source.ID() == owner.ID()
		},
		Process: func(s rules.Session, evt *rules.Event) error {
			s.Engine().Emit(evt, "%s freezes %s!", owner, evt.Target)
			s.Engine().Enqueue(rules.NewFreeze(evt.Target))
			return nil
		},
	}
}

// SpellPower adds value to every spell damage dealt from owner's side.
func SpellPower(owner rules.Entity, value int) *rules.Handler {
	return &rules.Handler{
		Name:  fmt.Sprintf("spell_power(%s, +%d)", owner, value),
		Kinds: []rules.Kind{rules.KindSpellDamage},
		Owner: owner,
		Phase: rules.PhaseBefore,
		Condition: func(evt *rules.Event) bool {
			return evt.Source != nil && evt.Source.PlayerID() == owner.PlayerID()
		},
		Process: func(s rules.Session, evt *rules.Event) error {
			evt.Value += value
			s.Engine().Emit(evt, "Spell power +%d from %s!", value, owner)
			return nil
		},
	}
}

// OwnerSpellPower is SpellPower with the value taken from the owning
// minion's spell power stat.
func OwnerSpellPower(owner rules.Entity) *rules.Handler {
	value := 0
	if m, ok := owner.(*rules.Minion); ok {
		value = m.SpellPower()
	}
	return SpellPower(owner, value)
}

// SpellPowerFactory returns a desk-handler factory with a fixed bonus.
func SpellPowerFactory(value int) rules.HandlerFactory {
	return func(owner rules.Entity) *rules.Handler {
		return SpellPower(owner, value)
	}
}
