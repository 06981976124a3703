package game

import (
	"fmt"
	"sync"
	"testing"

	"github.com/magefree/hearthstone-go/internal/game/cards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t), cards.NewBasicRegistry(), DefaultConfig())

	records := []PlayerRecord{{Hand: []string{"fireball"}}, {HeroHealth: 5}}
	require.NoError(t, m.Create("g2", WithRecords(records)))
	require.NoError(t, m.Create("g1"))
	assert.Error(t, m.Create("g1"), "duplicate id")
	assert.Error(t, m.Create(""), "empty id")
	assert.Equal(t, []string{"g1", "g2"}, m.IDs())

	_, err := m.Apply("g2", Action{Type: ActionStart})
	require.NoError(t, err)

	view, err := m.View("g2")
	require.NoError(t, err)
	assert.Equal(t, "g2", view.GameID)
	assert.False(t, view.Ended)
	require.Len(t, view.Players, 2)
	assert.Equal(t, 1, view.Players[0].MaxCrystal)
	assert.Equal(t, 1, view.Players[1].Hand)
	assert.NotEmpty(t, view.Checksum)

	out, err := m.Apply("g2", Action{Type: ActionSpell, Hand: 0, Target: "hero:1"})
	require.Error(t, err, "fireball costs more than one crystal")
	assert.False(t, out.Terminated)

	err = m.Do("g2", func(g *Game) error {
		g.CurrentPlayer().RemainCrystal = 4
		return nil
	})
	require.NoError(t, err)

	out, err = m.Apply("g2", Action{Type: ActionSpell, Hand: 0, Target: "hero:1"})
	require.NoError(t, err)
	assert.True(t, out.Terminated)

	view, err = m.View("g2")
	require.NoError(t, err)
	assert.True(t, view.Ended)
	assert.Equal(t, 1, view.Outcome.PlayerID)
	assert.Equal(t, 1, view.Players[0].Stats.SpellsCast)
	assert.Equal(t, 6, view.Players[0].Stats.DamageDealt)
	assert.Equal(t, 6, view.Players[1].Stats.DamageTaken)

	require.NoError(t, m.End("g2"))
	assert.Error(t, m.End("g2"))
	_, err = m.View("g2")
	assert.Error(t, err)
	assert.Equal(t, []string{"g1"}, m.IDs())
}

func TestManagerConcurrentGames(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t), nil, DefaultConfig())

	const games = 8
	for i := 0; i < games; i++ {
		require.NoError(t, m.Create(fmt.Sprintf("g%d", i)))
	}

	var wg sync.WaitGroup
	for i := 0; i < games; i++ {
		id := fmt.Sprintf("g%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Apply(id, Action{Type: ActionStart}); err != nil {
				t.Error(err)
				return
			}
			for turn := 0; turn < 4; turn++ {
				if _, err := m.Apply(id, Action{Type: ActionEndTurn}); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	var checksum string
	for _, id := range m.IDs() {
		view, err := m.View(id)
		require.NoError(t, err)
		assert.Equal(t, 4, view.Turn)
		if checksum == "" {
			checksum = view.Checksum
		}
		assert.Equal(t, checksum, view.Checksum)
	}
}
