package cards

import (
	"github.com/magefree/hearthstone-go/internal/game/handlers"
	"github.com/magefree/hearthstone-go/internal/game/rules"
)

// Coin is the identifier of the card the second player receives at start.
const Coin = "coin"

// NewBasicRegistry returns a registry holding the basic set.
func NewBasicRegistry() *Registry {
	r := NewRegistry()
	RegisterBasic(r)
	return r
}

// RegisterBasic adds the basic set to r. It panics on identifier clashes.
func RegisterBasic(r *Registry) {
	for _, m := range []rules.MinionSpec{
		{Name: "wisp", Cost: 0, Attack: 1, Health: 1},
		{Name: "river_crocolisk", Cost: 2, Attack: 2, Health: 3},
		{Name: "bloodfen_raptor", Cost: 2, Attack: 3, Health: 2},
		{Name: "chillwind_yeti", Cost: 4, Attack: 4, Health: 5},
		{Name: "spectral_spider", Cost: 1, Attack: 1, Health: 1},
		{Name: "worgen_infiltrator", Cost: 1, Attack: 2, Health: 1, Stealth: true},
		{Name: "dust_devil", Cost: 1, Overload: 2, Attack: 3, Health: 1},
		{
			Name: "kobold_geomancer", Cost: 2, Attack: 2, Health: 2, SpellPower: 1,
			DeskHandlers: []rules.HandlerFactory{handlers.OwnerSpellPower},
		},
		{
			Name: "water_elemental", Cost: 4, Attack: 3, Health: 6,
			DeskHandlers: []rules.HandlerFactory{handlers.FreezeOnDamage},
		},
		{Name: "elven_archer", Cost: 1, Attack: 1, Health: 1, BattleCry: damageTarget(1)},
		{Name: "leper_gnome", Cost: 1, Attack: 1, Health: 1, DeathRattle: damageEnemyHero(2)},
		{Name: "haunted_creeper", Cost: 2, Attack: 1, Health: 2, DeathRattle: summonAt("spectral_spider", 2)},
		{
			Name: "knife_juggler", Cost: 2, Attack: 3, Health: 2,
			DeskHandlers: []rules.HandlerFactory{juggle},
		},
	} {
		r.MustRegister(m.Name, minion(m))
	}

	for _, sp := range []rules.SpellSpec{
		{Name: Coin, Cost: 0, Play: gainCrystal},
		{Name: "moonfire", Cost: 0, Play: spellDamage(1)},
		{Name: "lightning_bolt", Cost: 1, Overload: 1, Play: spellDamage(3)},
		{Name: "frostbolt", Cost: 2, Play: frostbolt},
		{Name: "eviscerate", Cost: 2, Play: comboDamage(2, 4)},
		{Name: "fireball", Cost: 4, Play: spellDamage(6)},
		{Name: "arcane_intellect", Cost: 3, Play: draw(2)},
	} {
		r.MustRegister(sp.Name, spell(sp))
	}

	for _, w := range []rules.WeaponSpec{
		{Name: "fiery_war_axe", Cost: 2, Attack: 3, Durability: 2},
		{Name: "light_s_justice", Cost: 1, Attack: 1, Durability: 4},
	} {
		r.MustRegister(w.Name, weapon(w))
	}
}

func minion(spec rules.MinionSpec) Constructor {
	return func(playerID int) rules.Card { return rules.NewMinion(spec, playerID) }
}

func spell(spec rules.SpellSpec) Constructor {
	return func(playerID int) rules.Card { return rules.NewSpell(spec, playerID) }
}

func weapon(spec rules.WeaponSpec) Constructor {
	return func(playerID int) rules.Card { return rules.NewWeapon(spec, playerID) }
}

func opponent(s rules.Session, playerID int) *rules.Player {
	n := len(s.Players())
	if n == 0 {
		return nil
	}
	return s.Player((playerID + 1) % n)
}

func damageTarget(value int) rules.BattleCry {
	return func(s rules.Session, m *rules.Minion, pc rules.PlayContext) error {
		if pc.Target == nil {
			return nil
		}
		s.Engine().Enqueue(rules.NewDamage(m, pc.Target, value))
		return nil
	}
}

func damageEnemyHero(value int) rules.DeathRattle {
	return func(s rules.Session, m *rules.Minion, playerID, _ int) error {
		if enemy := opponent(s, playerID); enemy != nil {
			s.Engine().Enqueue(rules.NewDamage(m, enemy.Hero, value))
		}
		return nil
	}
}

// summonAt fills the vacated desk position with count tokens.
func summonAt(identifier string, count int) rules.DeathRattle {
	return func(s rules.Session, _ *rules.Minion, playerID, index int) error {
		for i := 0; i < count; i++ {
			if err := rules.EnqueueAddMinionByID(s, identifier, index, playerID); err != nil {
				return err
			}
		}
		return nil
	}
}

// juggle hits the enemy hero whenever another friendly minion finishes
// being summoned.
func juggle(owner rules.Entity) *rules.Handler {
	return &rules.Handler{
		Name:  "knife_juggler",
		Kinds: []rules.Kind{rules.KindCompleteMinionToDesk},
		Owner: owner,
		Phase: rules.PhaseAfter,
		Condition: func(evt *rules.Event) bool {
			return evt.PlayerID == owner.PlayerID() && evt.Minion != nil && evt.Minion.ID() != owner.ID()
		},
		Process: func(s rules.Session, evt *rules.Event) error {
			if enemy := opponent(s, owner.PlayerID()); enemy != nil {
				s.Engine().Enqueue(rules.NewDamage(owner, enemy.Hero, 1))
			}
			return nil
		},
	}
}

func gainCrystal(s rules.Session, _ *rules.Spell, pc rules.PlayContext) error {
	if p := s.Player(pc.PlayerID); p != nil {
		p.RemainCrystal++
	}
	return nil
}

func spellDamage(value int) rules.SpellScript {
	return comboDamage(value, value)
}

func comboDamage(value, combo int) rules.SpellScript {
	return func(s rules.Session, sp *rules.Spell, pc rules.PlayContext) error {
		if pc.Target == nil {
			return nil
		}
		v := value
		if pc.Combo {
			v = combo
		}
		s.Engine().Enqueue(rules.NewSpellDamage(sp, pc.Target, v))
		return nil
	}
}

func frostbolt(s rules.Session, sp *rules.Spell, pc rules.PlayContext) error {
	if pc.Target == nil {
		return nil
	}
	s.Engine().Enqueue(rules.NewSpellDamage(sp, pc.Target, 3))
	s.Engine().Enqueue(rules.NewFreeze(pc.Target))
	return nil
}

func draw(count int) rules.SpellScript {
	return func(s rules.Session, _ *rules.Spell, pc rules.PlayContext) error {
		for i := 0; i < count; i++ {
			s.Engine().Enqueue(rules.NewDrawCard(pc.PlayerID))
		}
		return nil
	}
}
