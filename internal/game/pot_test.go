package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPotsSingleLevel(t *testing.T) {
	table := newTable(990, 990, 990, 1000)
	for i := 0; i < 3; i++ {
		table.Seats[i].Contributed = 10
	}
	table.Seats[3].Status = Folded
	table.Pot = 30

	pots := buildPots(table)
	require.Len(t, pots, 1)
	assert.Equal(t, 30, pots[0].Amount)
	assert.Equal(t, []int{0, 1, 2}, pots[0].Eligible)
}

func TestBuildPotsWithAllInSidePot(t *testing.T) {
	table := newTable(800, 0, 800, 950)
	table.Seats[0].Contributed = 200
	table.Seats[1].Contributed = 100
	table.Seats[1].Status = AllIn
	table.Seats[2].Contributed = 200
	table.Seats[3].Contributed = 50
	table.Seats[3].Status = Folded
	table.Pot = 550

	pots := buildPots(table)
	require.Len(t, pots, 2)

	assert.Equal(t, 350, pots[0].Amount)
	assert.Equal(t, []int{0, 1, 2}, pots[0].Eligible)
	assert.Equal(t, 200, pots[1].Amount)
	assert.Equal(t, []int{0, 2}, pots[1].Eligible)
}

func TestBuildPotsFoldedAboveEveryLevel(t *testing.T) {
	table := newTable(1000, 1000, 1000, 1000)
	table.Seats[0].Contributed = 10
	table.Seats[1].Contributed = 30
	table.Seats[1].Status = Folded
	table.Pot = 40

	pots := buildPots(table)
	require.Len(t, pots, 1)
	assert.Equal(t, 40, pots[0].Amount)
	assert.Equal(t, []int{0}, pots[0].Eligible)
}

func TestSplitPot(t *testing.T) {
	tests := []struct {
		name    string
		amount  int
		winners []int
		want    map[int]int
	}{
		{"single winner", 220, []int{2}, map[int]int{2: 220}},
		{"even split", 220, []int{0, 1}, map[int]int{0: 110, 1: 110}},
		{"odd chip to human", 5, []int{0, 2}, map[int]int{0: 3, 2: 2}},
		{"odd chip to earliest seat", 5, []int{1, 3}, map[int]int{1: 3, 3: 2}},
		{"three way", 100, []int{1, 2, 3}, map[int]int{1: 34, 2: 33, 3: 33}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitPot(tt.amount, tt.winners)
			assert.Equal(t, tt.want, got)

			total := 0
			for _, v := range got {
				total += v
			}
			assert.Equal(t, tt.amount, total)
		})
	}
}
