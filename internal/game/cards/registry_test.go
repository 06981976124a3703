package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magefree/hearthstone-go/internal/game/rules"
)

func TestRegistryRegisterAndCreate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("wisp", minion(rules.MinionSpec{Name: "wisp", Attack: 1, Health: 1})))

	err := r.Register("wisp", minion(rules.MinionSpec{Name: "wisp"}))
	assert.ErrorIs(t, err, ErrDuplicateCard)
	assert.Error(t, r.Register("", nil))

	card, err := r.Create("wisp", 1)
	require.NoError(t, err)
	m, ok := card.(*rules.Minion)
	require.True(t, ok)
	assert.Equal(t, 1, m.PlayerID())
	assert.Equal(t, rules.LocationDeck, m.Location())

	other, err := r.Create("wisp", 1)
	require.NoError(t, err)
	assert.NotEqual(t, card.ID(), other.ID())
}

func TestRegistryUnknownCard(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("missing")
	assert.ErrorIs(t, err, ErrUnknownCard)
	_, err = r.Create("missing", 0)
	assert.ErrorIs(t, err, ErrUnknownCard)
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("coin", spell(rules.SpellSpec{Name: "coin"}))
	assert.Panics(t, func() {
		r.MustRegister("coin", spell(rules.SpellSpec{Name: "coin"}))
	})
}

func TestBasicRegistry(t *testing.T) {
	r := NewBasicRegistry()
	ids := r.IDs()
	assert.IsIncreasing(t, ids)
	assert.Contains(t, ids, Coin)

	card, err := r.Create("kobold_geomancer", 0)
	require.NoError(t, err)
	geomancer := card.(*rules.Minion)
	assert.Equal(t, 1, geomancer.SpellPower())
	require.Len(t, geomancer.DeskHandlers, 1)
	h := geomancer.DeskHandlers[0](geomancer)
	assert.Equal(t, []rules.Kind{rules.KindSpellDamage}, h.Kinds)
	assert.True(t, h.OwnedBy(geomancer))

	card, err = r.Create("fiery_war_axe", 1)
	require.NoError(t, err)
	axe, ok := card.(*rules.Weapon)
	require.True(t, ok)
	assert.Equal(t, 3, axe.Attack())
	assert.Equal(t, 2, axe.Durability())

	card, err = r.Create("lightning_bolt", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, card.Overload())
}
