package rules

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind is the discriminant of an event.
type Kind int

const (
	KindAttack Kind = iota
	KindDamage
	KindSpellDamage
	KindFreeze
	KindMinionDeath
	KindHeroDeath
	KindPlayCard
	KindSummonMinion
	KindAddMinionToDesk
	KindCompleteMinionToDesk
	KindPlaySpell
	KindRunSpell
	KindPlayWeapon
	KindEquipWeapon
	KindDrawCard
	KindAddCardToHand
	KindGameBegin
	KindTurnBegin
	KindTurnEnd
	KindGameEnd
)

var kindNames = map[Kind]string{
	KindAttack:               "ATTACK",
	KindDamage:               "DAMAGE",
	KindSpellDamage:          "SPELL_DAMAGE",
	KindFreeze:               "FREEZE",
	KindMinionDeath:          "MINION_DEATH",
	KindHeroDeath:            "HERO_DEATH",
	KindPlayCard:             "PLAY_CARD",
	KindSummonMinion:         "SUMMON_MINION",
	KindAddMinionToDesk:      "ADD_MINION_TO_DESK",
	KindCompleteMinionToDesk: "COMPLETE_MINION_TO_DESK",
	KindPlaySpell:            "PLAY_SPELL",
	KindRunSpell:             "RUN_SPELL",
	KindPlayWeapon:           "PLAY_WEAPON",
	KindEquipWeapon:          "EQUIP_WEAPON",
	KindDrawCard:             "DRAW_CARD",
	KindAddCardToHand:        "ADD_CARD_TO_HAND",
	KindGameBegin:            "GAME_BEGIN",
	KindTurnBegin:            "TURN_BEGIN",
	KindTurnEnd:              "TURN_END",
	KindGameEnd:              "GAME_END",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND_%d", int(k))
}

// IsDeath reports whether the kind is one of the death variants.
func (k Kind) IsDeath() bool {
	return k == KindMinionDeath || k == KindHeroDeath
}

// IsPlay reports whether the kind spends a card from hand.
func (k Kind) IsPlay() bool {
	switch k {
	case KindPlayCard, KindSummonMinion, KindPlaySpell, KindPlayWeapon:
		return true
	default:
		return false
	}
}

// State is the lifecycle position of an event.
type State int

const (
	StatePending State = iota
	StateDisabled
	StateResolved
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateDisabled:
		return "DISABLED"
	case StateResolved:
		return "RESOLVED"
	default:
		return fmt.Sprintf("STATE_%d", int(s))
	}
}

// Event is one atomic game action. Which payload fields are meaningful
// depends on Kind; use the New* constructors to build well-formed events.
// Handlers may mutate payload fields (Value, Target, Index) but never Kind.
type Event struct {
	ID       string
	Kind     Kind
	PlayerID int

	Source Entity    // attacker, damage source
	Target Character // attack, damage, freeze or spell target
	Card   Card      // card being played, drawn or added to hand
	Minion *Minion   // minion being summoned, added or killed

	// Identifier names a card to materialize through the card registry
	// when Card or Minion is nil.
	Identifier string

	Index int // desk position
	Value int // damage amount
	Combo bool

	state State
}

func newEvent(kind Kind, playerID int) *Event {
	return &Event{
		ID:       uuid.NewString(),
		Kind:     kind,
		PlayerID: playerID,
		state:    StatePending,
	}
}

// State returns the lifecycle state.
func (e *Event) State() State { return e.state }

// Pending reports whether the event is still waiting to resolve.
func (e *Event) Pending() bool { return e.state == StatePending }

// Disable cancels a pending event. It is a no-op on disabled or resolved
// events and reports whether the transition happened.
func (e *Event) Disable() bool {
	if e.state != StatePending {
		return false
	}
	e.state = StateDisabled
	return true
}

func (e *Event) String() string {
	switch e.Kind {
	case KindAttack, KindDamage, KindSpellDamage:
		return fmt.Sprintf("%s(%s=>%s, %d)", e.Kind, entityString(e.Source), entityString(e.Target), e.Value)
	case KindMinionDeath, KindAddMinionToDesk, KindCompleteMinionToDesk, KindSummonMinion:
		return fmt.Sprintf("%s(P%d, %s=>Loc%d)", e.Kind, e.PlayerID, entityString(e.Minion), e.Index)
	case KindPlayCard, KindPlaySpell, KindRunSpell, KindPlayWeapon, KindEquipWeapon, KindAddCardToHand:
		return fmt.Sprintf("%s(P%d, %s)", e.Kind, e.PlayerID, entityString(e.Card))
	default:
		return fmt.Sprintf("%s(P%d)", e.Kind, e.PlayerID)
	}
}

func entityString(ent Entity) string {
	if ent == nil {
		return "<nil>"
	}
	// Typed nil pointers still satisfy the interface.
	switch v := ent.(type) {
	case *Minion:
		if v == nil {
			return "<nil>"
		}
	case *Hero:
		if v == nil {
			return "<nil>"
		}
	}
	return ent.String()
}

// NewAttack builds an attack between two characters.
func NewAttack(source, target Character) *Event {
	evt := newEvent(KindAttack, source.PlayerID())
	evt.Source = source
	evt.Target = target
	return evt
}

// NewDamage builds a non-spell damage event. source may be nil (fatigue).
func NewDamage(source Entity, target Character, value int) *Event {
	evt := newEvent(KindDamage, target.PlayerID())
	evt.Source = source
	evt.Target = target
	evt.Value = value
	return evt
}

// NewSpellDamage builds a damage event that spell power applies to.
func NewSpellDamage(source Entity, target Character, value int) *Event {
	evt := NewDamage(source, target, value)
	evt.Kind = KindSpellDamage
	return evt
}

// NewFreeze freezes target.
func NewFreeze(target Character) *Event {
	evt := newEvent(KindFreeze, target.PlayerID())
	evt.Target = target
	return evt
}

// NewMinionDeath kills m. The death resolves against the desk of the
// player that controlled m when it was queued.
func NewMinionDeath(m *Minion) *Event {
	evt := newEvent(KindMinionDeath, m.PlayerID())
	evt.Minion = m
	evt.Index = -1
	return evt
}

// NewHeroDeath kills the hero of playerID.
func NewHeroDeath(playerID int) *Event {
	return newEvent(KindHeroDeath, playerID)
}

// NewPlayCard spends card from the player's hand.
func NewPlayCard(card Card, playerID int) *Event {
	evt := newEvent(KindPlayCard, playerID)
	evt.Card = card
	return evt
}

// NewSummonMinion plays m from hand onto the desk at index.
func NewSummonMinion(m *Minion, index, playerID int, target Character) *Event {
	evt := newEvent(KindSummonMinion, playerID)
	evt.Card = m
	evt.Minion = m
	evt.Index = index
	evt.Target = target
	return evt
}

// NewAddMinionToDesk places an existing minion on the desk.
func NewAddMinionToDesk(m *Minion, index, playerID int) *Event {
	evt := newEvent(KindAddMinionToDesk, playerID)
	evt.Minion = m
	evt.Index = index
	return evt
}

// NewAddMinionToDeskByID materializes the named minion and places it on the desk.
func NewAddMinionToDeskByID(identifier string, index, playerID int) *Event {
	evt := newEvent(KindAddMinionToDesk, playerID)
	evt.Identifier = identifier
	evt.Index = index
	return evt
}

// NewCompleteMinionToDesk marks the end of a summon.
func NewCompleteMinionToDesk(m *Minion, index, playerID int) *Event {
	evt := newEvent(KindCompleteMinionToDesk, playerID)
	evt.Minion = m
	evt.Index = index
	return evt
}

// EnqueueAddMinion queues m onto playerID's desk followed by the completion
// of the summon. Effects that put a minion on a desk without playing it from
// hand go through here so completion handlers see every arrival.
func EnqueueAddMinion(s Session, m *Minion, index, playerID int) {
	s.Engine().Enqueue(NewAddMinionToDesk(m, index, playerID))
	s.Engine().Enqueue(NewCompleteMinionToDesk(m, index, playerID))
}

// EnqueueAddMinionByID materializes the named minion for playerID and queues
// it with EnqueueAddMinion.
func EnqueueAddMinionByID(s Session, identifier string, index, playerID int) error {
	card, err := s.CreateCard(identifier, playerID)
	if err != nil {
		return err
	}
	m, ok := card.(*Minion)
	if !ok {
		return fmt.Errorf("%w: %q is not a minion", ErrInvariant, identifier)
	}
	EnqueueAddMinion(s, m, index, playerID)
	return nil
}

// NewPlaySpell plays sp from hand against target.
func NewPlaySpell(sp *Spell, playerID int, target Character) *Event {
	evt := newEvent(KindPlaySpell, playerID)
	evt.Card = sp
	evt.Target = target
	return evt
}

// NewRunSpell runs sp's script. The spell need not come from hand.
func NewRunSpell(sp *Spell, playerID int, target Character) *Event {
	evt := newEvent(KindRunSpell, playerID)
	evt.Card = sp
	evt.Target = target
	return evt
}

// NewPlayWeapon plays w from hand.
func NewPlayWeapon(w *Weapon, playerID int) *Event {
	evt := newEvent(KindPlayWeapon, playerID)
	evt.Card = w
	return evt
}

// NewEquipWeapon puts w on the player's hero.
func NewEquipWeapon(w *Weapon, playerID int) *Event {
	evt := newEvent(KindEquipWeapon, playerID)
	evt.Card = w
	return evt
}

// NewDrawCard draws the top card of the player's deck.
func NewDrawCard(playerID int) *Event {
	return newEvent(KindDrawCard, playerID)
}

// NewAddCardToHand puts an existing card in the player's hand.
func NewAddCardToHand(card Card, playerID int) *Event {
	evt := newEvent(KindAddCardToHand, playerID)
	evt.Card = card
	return evt
}

// NewAddCardToHandByID materializes the named card into the player's hand.
func NewAddCardToHandByID(identifier string, playerID int) *Event {
	evt := newEvent(KindAddCardToHand, playerID)
	evt.Identifier = identifier
	return evt
}

// NewGameBegin marks the start of a match.
func NewGameBegin() *Event {
	return newEvent(KindGameBegin, 0)
}

// NewTurnBegin starts the turn of playerID.
func NewTurnBegin(playerID int) *Event {
	return newEvent(KindTurnBegin, playerID)
}

// NewTurnEnd ends the turn of playerID.
func NewTurnEnd(playerID int) *Event {
	return newEvent(KindTurnEnd, playerID)
}

// NewGameEnd ends the match. playerID is the player that ended it (the loser
// for hero deaths).
func NewGameEnd(playerID int) *Event {
	return newEvent(KindGameEnd, playerID)
}
