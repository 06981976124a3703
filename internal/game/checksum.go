package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/magefree/hearthstone-go/internal/game/rules"
)

// Checksum computes a deterministic SHA-256 of the table state. Entity IDs
// are left out so two games built from the same records compare equal.
// Hand, deck and desk order are significant; the cemetery is compared as a
// multiset.
func (g *Game) Checksum() string {
	sum := sha256.Sum256([]byte(g.canonical()))
	return hex.EncodeToString(sum[:])
}

func (g *Game) canonical() string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("GAME:%d|%d|%d|%s\n", g.current, g.turn, g.summons, g.engine.Status()))

	for _, p := range g.players {
		buf.WriteString(fmt.Sprintf("PLAYER:%d|%d/%d|%d/%d/%d/%d|%d|%d\n",
			p.ID,
			p.MaxCrystal, p.RemainCrystal,
			p.LockedCrystal, p.NextLockedCrystal,
			p.Fatigue, p.CardsPlayed,
			len(p.Deck), len(p.Hand),
		))

		hero := p.Hero
		buf.WriteString(fmt.Sprintf("  HERO:%d|%d|%t|%d\n", hero.Attack(), hero.Health(), hero.Frozen(), hero.RemainingAttacks()))
		if hero.Weapon != nil {
			buf.WriteString(fmt.Sprintf("  WEAPON:%s|%d|%d\n", hero.Weapon.Name(), hero.Weapon.Attack(), hero.Weapon.Durability()))
		}

		for _, m := range p.Desk {
			buf.WriteString(fmt.Sprintf("  DESK:%s|%d|%d|%t|%t|%d|%d\n",
				m.Name(), m.Attack(), m.Health(), m.Frozen(), m.Stealth(), m.RemainingAttacks(), m.Timestamp))
		}

		buf.WriteString("  HAND:")
		buf.WriteString(strings.Join(cardNames(p.Hand), ","))
		buf.WriteString("\n")

		buf.WriteString("  DECK:")
		buf.WriteString(strings.Join(cardNames(p.Deck), ","))
		buf.WriteString("\n")

		cemetery := cardNames(p.Cemetery)
		sort.Strings(cemetery)
		buf.WriteString("  CEMETERY:")
		buf.WriteString(strings.Join(cemetery, ","))
		buf.WriteString("\n")
	}

	return buf.String()
}

func cardNames(cs []rules.Card) []string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name()
	}
	return names
}
