package game

import (
	"fmt"
	"os"

	"github.com/magefree/hearthstone-go/internal/game/rules"
	"gopkg.in/yaml.v3"
)

// playerCount is the number of seats at the table.
const playerCount = 2

// PlayerRecord is the starting state of one player in the load format.
// Zero crystal fields mean an empty pool; a zero hero health means the
// configured default.
type PlayerRecord struct {
	HeroHealth        int      `yaml:"hero_health"`
	MaxCrystal        int      `yaml:"max_crystal"`
	RemainingCrystal  int      `yaml:"remaining_crystal"`
	LockedCrystal     int      `yaml:"locked_crystal"`
	NextLockedCrystal int      `yaml:"next_locked_crystal"`
	Hand              []string `yaml:"hand"`
	Deck              []string `yaml:"deck"`
	Desk              []string `yaml:"desk"`
}

// ParseRecords decodes a YAML (or JSON) list of exactly two player records.
func ParseRecords(data []byte) ([]PlayerRecord, error) {
	var records []PlayerRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode game state: %w", err)
	}
	if len(records) != playerCount {
		return nil, fmt.Errorf("game state has %d player records, want %d", len(records), playerCount)
	}
	return records, nil
}

// LoadRecords reads and decodes a game state file.
func LoadRecords(path string) ([]PlayerRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game state: %w", err)
	}
	return ParseRecords(data)
}

// table is a set of players built from records but not yet seated.
type table struct {
	players  []*rules.Player
	handlers []*rules.Handler
	summons  int
}

// buildTable materializes records into players without touching the running
// game. Desk minions get summon timestamps in load order and their desk
// handlers are collected for seating. With no records both players start
// empty.
func (g *Game) buildTable(records []PlayerRecord) (*table, error) {
	if len(records) == 0 {
		records = make([]PlayerRecord, playerCount)
	}
	if len(records) != playerCount {
		return nil, fmt.Errorf("game state has %d player records, want %d", len(records), playerCount)
	}

	t := &table{players: make([]*rules.Player, 0, playerCount)}
	for id, rec := range records {
		health := rec.HeroHealth
		if health <= 0 {
			health = g.cfg.HeroHealth
		}
		p := rules.NewPlayer(id, health)
		p.MaxCrystal = rec.MaxCrystal
		p.RemainCrystal = rec.RemainingCrystal
		p.LockedCrystal = rec.LockedCrystal
		p.NextLockedCrystal = rec.NextLockedCrystal

		if len(rec.Hand) > g.cfg.MaxHand {
			return nil, fmt.Errorf("P%d hand has %d cards, limit is %d", id, len(rec.Hand), g.cfg.MaxHand)
		}
		if len(rec.Desk) > g.cfg.MaxDesk {
			return nil, fmt.Errorf("P%d desk has %d minions, limit is %d", id, len(rec.Desk), g.cfg.MaxDesk)
		}

		hand, err := g.createCards(rec.Hand, id, rules.LocationHand)
		if err != nil {
			return nil, err
		}
		p.Hand = hand
		deck, err := g.createCards(rec.Deck, id, rules.LocationDeck)
		if err != nil {
			return nil, err
		}
		p.Deck = deck

		for _, identifier := range rec.Desk {
			card, err := g.CreateCard(identifier, id)
			if err != nil {
				return nil, fmt.Errorf("P%d desk: %w", id, err)
			}
			m, ok := card.(*rules.Minion)
			if !ok {
				return nil, fmt.Errorf("P%d desk: %s is not a minion", id, identifier)
			}
			m.SetLocation(rules.LocationDesk)
			m.Timestamp = t.summons
			t.summons++
			p.InsertDesk(len(p.Desk), m)
			for _, factory := range m.DeskHandlers {
				if h := factory(m); h != nil {
					t.handlers = append(t.handlers, h)
				}
			}
		}
		t.players = append(t.players, p)
	}
	return t, nil
}

func (g *Game) createCards(identifiers []string, playerID int, loc rules.Location) ([]rules.Card, error) {
	out := make([]rules.Card, 0, len(identifiers))
	for _, identifier := range identifiers {
		card, err := g.CreateCard(identifier, playerID)
		if err != nil {
			return nil, fmt.Errorf("P%d %s: %w", playerID, loc, err)
		}
		card.SetLocation(loc)
		out = append(out, card)
	}
	return out, nil
}
