package rules

import (
	"fmt"

	"github.com/google/uuid"
)

// Location is the zone a card currently occupies.
type Location int

const (
	LocationDeck Location = iota
	LocationHand
	LocationDesk
	LocationCemetery
)

var locationNames = map[Location]string{
	LocationDeck:     "DECK",
	LocationHand:     "HAND",
	LocationDesk:     "DESK",
	LocationCemetery: "CEMETERY",
}

func (l Location) String() string {
	if name, ok := locationNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LOCATION_%d", int(l))
}

// Entity is anything an event or handler can reference.
type Entity interface {
	ID() string
	PlayerID() int
	String() string
}

// Character is an entity with combat stats: heroes and minions.
type Character interface {
	Entity
	Attack() int
	Health() int
	Alive() bool
	TakeDamage(amount int)
	Frozen() bool
	SetFrozen(frozen bool)
	RemainingAttacks() int
	SetRemainingAttacks(n int)
}

// Card is an entity that lives in a deck, hand, desk or cemetery.
type Card interface {
	Entity
	Name() string
	Cost() int
	Overload() int
	Location() Location
	SetLocation(loc Location)
	SetPlayerID(playerID int)
}

// PlayContext carries the positional and targeting data of a card being played.
type PlayContext struct {
	PlayerID int
	Index    int
	Target   Character
	// Combo reports whether the player had already played a card this turn
	// when this one was played.
	Combo bool
}

// BattleCry runs between a minion reaching the desk and its summon completing.
type BattleCry func(s Session, m *Minion, pc PlayContext) error

// DeathRattle runs after a minion left the desk. index is the vacated position.
type DeathRattle func(s Session, m *Minion, playerID, index int) error

// SpellScript is the effect of a spell.
type SpellScript func(s Session, sp *Spell, pc PlayContext) error

// HandlerFactory builds a handler owned by the given entity. Minions carry
// these so their desk handlers can be registered when they are added to the
// desk and unregistered when they die.
type HandlerFactory func(owner Entity) *Handler

type cardBase struct {
	id       string
	name     string
	cost     int
	overload int
	playerID int
	location Location
}

func newCardBase(name string, cost, overload, playerID int) cardBase {
	return cardBase{
		id:       uuid.NewString(),
		name:     name,
		cost:     cost,
		overload: overload,
		playerID: playerID,
		location: LocationDeck,
	}
}

func (c *cardBase) ID() string               { return c.id }
func (c *cardBase) Name() string             { return c.name }
func (c *cardBase) Cost() int                { return c.cost }
func (c *cardBase) Overload() int            { return c.overload }
func (c *cardBase) PlayerID() int            { return c.playerID }
func (c *cardBase) SetPlayerID(playerID int) { c.playerID = playerID }
func (c *cardBase) Location() Location       { return c.location }
func (c *cardBase) SetLocation(loc Location) { c.location = loc }

// MinionSpec describes a minion card before it is instantiated.
type MinionSpec struct {
	Name         string
	Cost         int
	Overload     int
	Attack       int
	Health       int
	SpellPower   int
	Stealth      bool
	BattleCry    BattleCry
	DeathRattle  DeathRattle
	DeskHandlers []HandlerFactory
}

// Minion is a card that can be placed on the desk.
type Minion struct {
	cardBase
	attack           int
	health           int
	maxHealth        int
	spellPower       int
	remainingAttacks int
	frozen           bool
	stealth          bool

	// Timestamp is the summon order, -1 until the minion reaches the desk.
	Timestamp int

	BattleCry    BattleCry
	DeathRattle  DeathRattle
	DeskHandlers []HandlerFactory
}

// NewMinion instantiates a minion for the given player.
func NewMinion(spec MinionSpec, playerID int) *Minion {
	return &Minion{
		cardBase:     newCardBase(spec.Name, spec.Cost, spec.Overload, playerID),
		attack:       spec.Attack,
		health:       spec.Health,
		maxHealth:    spec.Health,
		spellPower:   spec.SpellPower,
		stealth:      spec.Stealth,
		Timestamp:    -1,
		BattleCry:    spec.BattleCry,
		DeathRattle:  spec.DeathRattle,
		DeskHandlers: spec.DeskHandlers,
	}
}

func (m *Minion) Attack() int               { return m.attack }
func (m *Minion) Health() int               { return m.health }
func (m *Minion) MaxHealth() int            { return m.maxHealth }
func (m *Minion) Alive() bool               { return m.health > 0 }
func (m *Minion) SpellPower() int           { return m.spellPower }
func (m *Minion) Frozen() bool              { return m.frozen }
func (m *Minion) SetFrozen(frozen bool)     { m.frozen = frozen }
func (m *Minion) Stealth() bool             { return m.stealth }
func (m *Minion) SetStealth(stealth bool)   { m.stealth = stealth }
func (m *Minion) RemainingAttacks() int     { return m.remainingAttacks }
func (m *Minion) SetRemainingAttacks(n int) { m.remainingAttacks = n }

// TakeDamage lowers the minion's health. Health may go negative.
func (m *Minion) TakeDamage(amount int) {
	if amount > 0 {
		m.health -= amount
	}
}

func (m *Minion) String() string {
	return fmt.Sprintf("%s(P%d %d/%d)", m.name, m.playerID, m.attack, m.health)
}

// SpellSpec describes a spell card.
type SpellSpec struct {
	Name     string
	Cost     int
	Overload int
	Play     SpellScript
}

// Spell is a card whose effect runs once and then goes to the cemetery.
type Spell struct {
	cardBase
	Play SpellScript
}

// NewSpell instantiates a spell for the given player.
func NewSpell(spec SpellSpec, playerID int) *Spell {
	return &Spell{
		cardBase: newCardBase(spec.Name, spec.Cost, spec.Overload, playerID),
		Play:     spec.Play,
	}
}

func (s *Spell) String() string {
	return fmt.Sprintf("%s(P%d spell)", s.name, s.playerID)
}

// WeaponSpec describes a weapon card.
type WeaponSpec struct {
	Name       string
	Cost       int
	Overload   int
	Attack     int
	Durability int
}

// Weapon is equipped by a hero and adds to its attack.
type Weapon struct {
	cardBase
	attack     int
	durability int
}

// NewWeapon instantiates a weapon for the given player.
func NewWeapon(spec WeaponSpec, playerID int) *Weapon {
	return &Weapon{
		cardBase:   newCardBase(spec.Name, spec.Cost, spec.Overload, playerID),
		attack:     spec.Attack,
		durability: spec.Durability,
	}
}

func (w *Weapon) Attack() int     { return w.attack }
func (w *Weapon) Durability() int { return w.durability }

// Wear spends one durability and reports whether the weapon broke.
func (w *Weapon) Wear() bool {
	w.durability--
	return w.durability <= 0
}

func (w *Weapon) String() string {
	return fmt.Sprintf("%s(P%d %d/%d)", w.name, w.playerID, w.attack, w.durability)
}

// Hero is the player's avatar on the board.
type Hero struct {
	id               string
	playerID         int
	attack           int
	health           int
	maxHealth        int
	remainingAttacks int
	frozen           bool

	Weapon *Weapon
}

// NewHero creates a hero with the given health.
func NewHero(playerID, health int) *Hero {
	return &Hero{
		id:        uuid.NewString(),
		playerID:  playerID,
		health:    health,
		maxHealth: health,
	}
}

func (h *Hero) ID() string    { return h.id }
func (h *Hero) PlayerID() int { return h.playerID }

// Attack is the hero's base attack plus its weapon's.
func (h *Hero) Attack() int {
	if h.Weapon != nil {
		return h.attack + h.Weapon.Attack()
	}
	return h.attack
}

func (h *Hero) Health() int               { return h.health }
func (h *Hero) MaxHealth() int            { return h.maxHealth }
func (h *Hero) Alive() bool               { return h.health > 0 }
func (h *Hero) Frozen() bool              { return h.frozen }
func (h *Hero) SetFrozen(frozen bool)     { h.frozen = frozen }
func (h *Hero) RemainingAttacks() int     { return h.remainingAttacks }
func (h *Hero) SetRemainingAttacks(n int) { h.remainingAttacks = n }

func (h *Hero) TakeDamage(amount int) {
	if amount > 0 {
		h.health -= amount
	}
}

func (h *Hero) String() string {
	return fmt.Sprintf("Hero(P%d %d)", h.playerID, h.health)
}

// Player holds one side of the table. Hand and desk order are significant.
type Player struct {
	ID       int
	Hero     *Hero
	Hand     []Card
	Desk     []*Minion
	Deck     []Card
	Cemetery []Card

	MaxCrystal        int
	RemainCrystal     int
	LockedCrystal     int
	NextLockedCrystal int

	Fatigue     int
	CardsPlayed int
}

// NewPlayer creates an empty player with a fresh hero.
func NewPlayer(id, heroHealth int) *Player {
	return &Player{
		ID:   id,
		Hero: NewHero(id, heroHealth),
	}
}

// ComboActive reports whether a card was already played this turn.
func (p *Player) ComboActive() bool {
	return p.CardsPlayed > 0
}

// HandIndex returns the position of card in hand, or -1.
func (p *Player) HandIndex(card Card) int {
	for i, c := range p.Hand {
		if c == card {
			return i
		}
	}
	return -1
}

// RemoveFromHand removes card from the hand preserving order.
func (p *Player) RemoveFromHand(card Card) bool {
	idx := p.HandIndex(card)
	if idx < 0 {
		return false
	}
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	return true
}

// DeskIndex returns the position of m on the desk, or -1.
func (p *Player) DeskIndex(m *Minion) int {
	for i, d := range p.Desk {
		if d == m {
			return i
		}
	}
	return -1
}

// InsertDesk places m at index, shifting later minions right.
func (p *Player) InsertDesk(index int, m *Minion) {
	p.Desk = append(p.Desk, nil)
	copy(p.Desk[index+1:], p.Desk[index:])
	p.Desk[index] = m
}

// RemoveDeskAt removes and returns the minion at index.
func (p *Player) RemoveDeskAt(index int) *Minion {
	m := p.Desk[index]
	p.Desk = append(p.Desk[:index], p.Desk[index+1:]...)
	return m
}

// Bury moves card to the cemetery.
func (p *Player) Bury(card Card) {
	card.SetLocation(LocationCemetery)
	p.Cemetery = append(p.Cemetery, card)
}

// Characters returns the hero followed by the desk minions.
func (p *Player) Characters() []Character {
	chars := make([]Character, 0, len(p.Desk)+1)
	chars = append(chars, p.Hero)
	for _, m := range p.Desk {
		chars = append(chars, m)
	}
	return chars
}
