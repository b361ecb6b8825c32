package trail_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"catma/internal/runtimemodel"
	"catma/internal/trail"
	"catma/internal/walk"
)

func shop() *runtimemodel.Model {
	m := runtimemodel.New("general")
	m.AddTransition("__start0", "0", "")
	m.AddTransition("0", "1", "8080__>login__200__post__user__auth\n9")
	m.AddTransition("1", "2", "8080__>orders__200__get__user__order\n5")
	m.AddTransition("2", "3", "9090__>pay>card__201__post__order__payment\n3")
	m.AddTransition("0", "4", "in__8080__>orders>42__200__get__user__order\n2")
	m.AddTransition("4", "5", "9090__>pay>cash__201__post__order__payment\n1")
	m.AddTransition("5", "6", "8080__>orders__200__get__user__order\n1")
	m.AddTransition("6", "7", "7070__>ship__200__get__order__shipping\n1")
	return m
}

func TestCorrelate(t *testing.T) {
	seq := walk.Sequence{"user__order", "order__payment", "payment__ledger"}

	got := trail.Correlate(seq, shop())
	assert.Equal(t, [][]string{
		{"8080__/orders", "9090__/pay/card"},
		{"8080__/orders/42", "9090__/pay/cash"},
	}, got)
}

func TestCorrelatePartialMatchDropped(t *testing.T) {
	// The second hop goes to shipping, not payment.
	m := runtimemodel.New("m")
	m.AddTransition("0", "1", "8080__>a__200__get__user__order\n1")
	m.AddTransition("1", "2", "7070__>ship__200__get__order__shipping\n1")

	assert.Empty(t, trail.Correlate(walk.Sequence{"user__order", "order__payment", "payment__ledger"}, m))
}

func TestCorrelateSingleToken(t *testing.T) {
	got := trail.Correlate(walk.Sequence{"user__auth"}, shop())
	assert.Equal(t, [][]string{{"8080__/login"}}, got)
}

func TestCorrelateDeduplicates(t *testing.T) {
	m := runtimemodel.New("m")
	m.AddTransition("0", "1", "8080__>a__200__get__user__order\n1")
	m.AddTransition("2", "3", "8080__>a__200__get__user__order\n1")

	got := trail.Correlate(walk.Sequence{"user__order", "order__catalog"}, m)
	assert.Equal(t, [][]string{{"8080__/a"}}, got)
}

func TestCorrelateFirstMatchWins(t *testing.T) {
	m := runtimemodel.New("m")
	m.AddTransition("0", "1", "8080__>a__200__get__user__order\n1")
	m.AddTransition("1", "2", "80__>x__200__get__order__db\n1")
	m.AddTransition("1", "3", "80__>first__200__get__order__payment\n1")
	m.AddTransition("1", "4", "80__>second__200__get__order__payment\n1")

	got := trail.Correlate(walk.Sequence{"user__order", "order__payment", "payment__ledger"}, m)
	assert.Equal(t, [][]string{{"8080__/a", "80__/first"}}, got)
}

func TestCorrelateNoMatch(t *testing.T) {
	assert.Empty(t, trail.Correlate(walk.Sequence{"a__b", "b__c"}, shop()))
	assert.Empty(t, trail.Correlate(nil, shop()))
}
