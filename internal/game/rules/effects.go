package rules

import (
	"fmt"
)

// happen runs the effect routine of the event's kind. Effects may enqueue
// further events or, in the case of SummonMinion, dispatch one immediately.
func (e *Event) happen(s Session) error {
	switch e.Kind {
	case KindAttack:
		return e.attack(s)
	case KindDamage, KindSpellDamage:
		return e.damage(s)
	case KindFreeze:
		if e.Target == nil {
			return fmt.Errorf("%w: freeze without a target", ErrInvariant)
		}
		e.Target.SetFrozen(true)
		s.Engine().Emit(e, "%s is frozen", e.Target)
		return nil
	case KindMinionDeath:
		return e.minionDeath(s)
	case KindHeroDeath:
		s.Engine().Emit(e, "Hero of P%d died", e.PlayerID)
		s.Engine().Enqueue(NewGameEnd(e.PlayerID))
		return nil
	case KindPlayCard:
		return e.playCard(s)
	case KindSummonMinion:
		return e.summonMinion(s)
	case KindAddMinionToDesk:
		return e.addMinionToDesk(s)
	case KindCompleteMinionToDesk:
		return e.completeMinionToDesk(s)
	case KindPlaySpell:
		return e.playSpell(s)
	case KindRunSpell:
		return e.runSpell(s)
	case KindPlayWeapon:
		return e.playWeapon(s)
	case KindEquipWeapon:
		return e.equipWeapon(s)
	case KindDrawCard:
		return e.drawCard(s)
	case KindAddCardToHand:
		return e.addCardToHand(s)
	case KindGameBegin:
		s.Engine().Emit(e, "Game begin!")
		return nil
	case KindTurnBegin:
		return e.turnBegin(s)
	case KindTurnEnd:
		return e.turnEnd(s)
	case KindGameEnd:
		s.Engine().Emit(e, "Game end at P%d!", e.PlayerID)
		return nil
	default:
		return fmt.Errorf("%w: unknown event kind %s", ErrInvariant, e.Kind)
	}
}

func (e *Event) player(s Session) (*Player, error) {
	p := s.Player(e.PlayerID)
	if p == nil {
		return nil, fmt.Errorf("%w: no player %d", ErrInvariant, e.PlayerID)
	}
	return p, nil
}

func (e *Event) attack(s Session) error {
	src, ok := e.Source.(Character)
	if !ok || e.Target == nil {
		return fmt.Errorf("%w: attack needs a source and a target character", ErrInvariant)
	}
	// Both attack values are taken before anything changes, so a breaking
	// weapon still strikes.
	srcAttack := src.Attack()
	dstAttack := e.Target.Attack()

	src.SetRemainingAttacks(src.RemainingAttacks() - 1)
	switch v := src.(type) {
	case *Minion:
		v.SetStealth(false)
	case *Hero:
		if v.Weapon != nil && v.Weapon.Wear() {
			w := v.Weapon
			v.Weapon = nil
			if p := s.Player(v.PlayerID()); p != nil {
				p.Bury(w)
			}
			s.Engine().Emit(e, "%s broke", w)
		}
	}
	s.Engine().Emit(e, "%s attacks %s", src, e.Target)

	if srcAttack > 0 {
		s.Engine().Enqueue(NewDamage(src, e.Target, srcAttack))
	}
	if dstAttack > 0 {
		s.Engine().Enqueue(NewDamage(e.Target, src, dstAttack))
	}
	return nil
}

func (e *Event) damage(s Session) error {
	if e.Target == nil {
		return fmt.Errorf("%w: damage without a target", ErrInvariant)
	}
	if e.Value <= 0 {
		e.Disable()
		return nil
	}
	e.Target.TakeDamage(e.Value)
	s.Engine().Emit(e, "%s takes %d damage", e.Target, e.Value)
	if e.Target.Alive() {
		return nil
	}
	switch v := e.Target.(type) {
	case *Minion:
		s.Engine().Enqueue(NewMinionDeath(v))
	case *Hero:
		s.Engine().Enqueue(NewHeroDeath(v.PlayerID()))
	}
	return nil
}

func (e *Event) minionDeath(s Session) error {
	m := e.Minion
	if m == nil {
		return fmt.Errorf("%w: minion death without a minion", ErrInvariant)
	}
	if m.Location() != LocationDesk {
		// Already removed by another effect.
		e.Disable()
		return nil
	}
	p, err := e.player(s)
	if err != nil {
		return err
	}
	idx := p.DeskIndex(m)
	if idx < 0 {
		return fmt.Errorf("%w: %s is on the desk but not in P%d's desk", ErrInvariant, m, p.ID)
	}
	p.RemoveDeskAt(idx)
	p.Bury(m)
	e.Index = idx
	s.Engine().UnregisterOwner(m)
	s.Engine().Emit(e, "%s died at P%d Loc%d", m, p.ID, idx)

	if m.DeathRattle != nil {
		if err := m.DeathRattle(s, m, p.ID, idx); err != nil {
			return fmt.Errorf("death rattle of %s: %w", m, err)
		}
	}
	return nil
}

func (e *Event) playCard(s Session) error {
	p, err := e.player(s)
	if err != nil {
		return err
	}
	if e.Card == nil {
		return fmt.Errorf("%w: play without a card", ErrInvariant)
	}
	if p.HandIndex(e.Card) < 0 {
		return fmt.Errorf("%w: %s is not in P%d's hand", ErrInvariant, e.Card, p.ID)
	}
	p.RemainCrystal -= e.Card.Cost()
	p.NextLockedCrystal += e.Card.Overload()
	p.RemoveFromHand(e.Card)
	s.Engine().Emit(e, "P%d plays %s", p.ID, e.Card)
	return nil
}

func (e *Event) summonMinion(s Session) error {
	if e.Minion == nil {
		return fmt.Errorf("%w: summon without a minion", ErrInvariant)
	}
	if err := e.playCard(s); err != nil {
		return err
	}

	add := NewAddMinionToDesk(e.Minion, e.Index, e.PlayerID)
	out, err := s.Engine().Dispatch(s, add)
	if err != nil {
		return err
	}
	if out.Terminated {
		return nil
	}
	if add.State() != StateResolved {
		p := s.Player(e.PlayerID)
		p.Bury(e.Minion)
		return nil
	}
	e.Index = add.Index

	if e.Minion.BattleCry != nil {
		pc := PlayContext{PlayerID: e.PlayerID, Index: add.Index, Target: e.Target, Combo: e.Combo}
		if err := e.Minion.BattleCry(s, e.Minion, pc); err != nil {
			return fmt.Errorf("battle cry of %s: %w", e.Minion, err)
		}
	}
	s.Engine().Enqueue(NewCompleteMinionToDesk(e.Minion, add.Index, e.PlayerID))
	return nil
}

func (e *Event) addMinionToDesk(s Session) error {
	p, err := e.player(s)
	if err != nil {
		return err
	}
	if e.Minion == nil {
		if e.Identifier == "" {
			return fmt.Errorf("%w: add to desk without a minion", ErrInvariant)
		}
		card, err := s.CreateCard(e.Identifier, p.ID)
		if err != nil {
			return err
		}
		m, ok := card.(*Minion)
		if !ok {
			return fmt.Errorf("%w: %q is not a minion", ErrInvariant, e.Identifier)
		}
		e.Minion = m
	}

	if len(p.Desk) >= s.Limits().MaxDesk {
		e.Disable()
		s.Engine().Emit(e, "The desk is full")
		return nil
	}
	if e.Index < 0 || e.Index > len(p.Desk) {
		e.Index = len(p.Desk)
	}

	m := e.Minion
	m.SetLocation(LocationDesk)
	m.SetPlayerID(p.ID)
	p.InsertDesk(e.Index, m)
	m.Timestamp = s.NextSummonStamp()
	m.SetRemainingAttacks(0)
	for _, factory := range m.DeskHandlers {
		if h := factory(m); h != nil {
			s.Engine().RegisterHandler(h)
		}
	}
	s.Engine().Emit(e, "%s added to P%d Loc%d", m, p.ID, e.Index)
	return nil
}

// completeMinionToDesk resolves only while the minion is still on a desk,
// so a cancelled or full-desk add never announces a summon.
func (e *Event) completeMinionToDesk(s Session) error {
	m := e.Minion
	if m == nil {
		return fmt.Errorf("%w: complete summon without a minion", ErrInvariant)
	}
	idx := -1
	p := s.Player(m.PlayerID())
	if p != nil && m.Location() == LocationDesk {
		idx = p.DeskIndex(m)
	}
	if idx < 0 {
		e.Disable()
		return nil
	}
	e.Index = idx
	e.PlayerID = p.ID
	s.Engine().Emit(e, "%s summoned at P%d Loc%d", m, p.ID, idx)
	return nil
}

func (e *Event) playSpell(s Session) error {
	sp, ok := e.Card.(*Spell)
	if !ok {
		return fmt.Errorf("%w: play spell with %s", ErrInvariant, entityString(e.Card))
	}
	if err := e.playCard(s); err != nil {
		return err
	}
	run := NewRunSpell(sp, e.PlayerID, e.Target)
	run.Combo = e.Combo
	s.Engine().Enqueue(run)
	return nil
}

func (e *Event) runSpell(s Session) error {
	sp, ok := e.Card.(*Spell)
	if !ok {
		return fmt.Errorf("%w: run spell with %s", ErrInvariant, entityString(e.Card))
	}
	if p := s.Player(e.PlayerID); p != nil {
		p.Bury(sp)
	}
	s.Engine().Emit(e, "P%d casts %s", e.PlayerID, sp)
	if sp.Play == nil {
		return nil
	}
	pc := PlayContext{PlayerID: e.PlayerID, Index: -1, Target: e.Target, Combo: e.Combo}
	if err := sp.Play(s, sp, pc); err != nil {
		return fmt.Errorf("spell %s: %w", sp, err)
	}
	return nil
}

func (e *Event) playWeapon(s Session) error {
	w, ok := e.Card.(*Weapon)
	if !ok {
		return fmt.Errorf("%w: play weapon with %s", ErrInvariant, entityString(e.Card))
	}
	if err := e.playCard(s); err != nil {
		return err
	}
	s.Engine().Enqueue(NewEquipWeapon(w, e.PlayerID))
	return nil
}

func (e *Event) equipWeapon(s Session) error {
	p, err := e.player(s)
	if err != nil {
		return err
	}
	w, ok := e.Card.(*Weapon)
	if !ok {
		return fmt.Errorf("%w: equip with %s", ErrInvariant, entityString(e.Card))
	}
	if old := p.Hero.Weapon; old != nil {
		p.Bury(old)
	}
	w.SetLocation(LocationDesk)
	w.SetPlayerID(p.ID)
	p.Hero.Weapon = w
	s.Engine().Emit(e, "P%d equips %s", p.ID, w)
	return nil
}

func (e *Event) drawCard(s Session) error {
	p, err := e.player(s)
	if err != nil {
		return err
	}
	if len(p.Deck) == 0 {
		p.Fatigue++
		s.Engine().Emit(e, "P%d has no card to draw, fatigue %d", p.ID, p.Fatigue)
		s.Engine().Enqueue(NewDamage(nil, p.Hero, p.Fatigue))
		return nil
	}
	card := p.Deck[0]
	p.Deck = p.Deck[1:]
	e.Card = card
	e.toHand(s, p, card)
	return nil
}

func (e *Event) addCardToHand(s Session) error {
	p, err := e.player(s)
	if err != nil {
		return err
	}
	if e.Card == nil {
		if e.Identifier == "" {
			return fmt.Errorf("%w: add to hand without a card", ErrInvariant)
		}
		card, err := s.CreateCard(e.Identifier, p.ID)
		if err != nil {
			return err
		}
		e.Card = card
	}
	e.Card.SetPlayerID(p.ID)
	e.toHand(s, p, e.Card)
	return nil
}

// toHand puts card in hand, burning it when the hand is full.
func (e *Event) toHand(s Session, p *Player, card Card) {
	if len(p.Hand) >= s.Limits().MaxHand {
		p.Bury(card)
		s.Engine().Emit(e, "P%d's hand is full, %s burns", p.ID, card)
		return
	}
	card.SetLocation(LocationHand)
	p.Hand = append(p.Hand, card)
	s.Engine().Emit(e, "P%d gets %s", p.ID, card)
}

func (e *Event) turnBegin(s Session) error {
	p, err := e.player(s)
	if err != nil {
		return err
	}
	p.MaxCrystal = min(p.MaxCrystal+1, s.Limits().MaxCrystal)
	p.LockedCrystal = p.NextLockedCrystal
	p.NextLockedCrystal = 0
	p.RemainCrystal = max(p.MaxCrystal-p.LockedCrystal, 0)
	for _, c := range p.Characters() {
		if c.Frozen() {
			c.SetRemainingAttacks(0)
		} else {
			c.SetRemainingAttacks(1)
		}
	}
	s.Engine().Emit(e, "Turn of P%d begins with %d/%d crystals", p.ID, p.RemainCrystal, p.MaxCrystal)
	return nil
}

func (e *Event) turnEnd(s Session) error {
	p, err := e.player(s)
	if err != nil {
		return err
	}
	for _, c := range p.Characters() {
		c.SetFrozen(false)
	}
	s.Engine().Emit(e, "Turn of P%d ends", p.ID)
	next := s.AdvanceTurn()
	s.Engine().Enqueue(NewTurnBegin(next))
	return nil
}
