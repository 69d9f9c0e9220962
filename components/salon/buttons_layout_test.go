package salon

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRowsGroupsAndSorts(t *testing.T) {
	rows := BuildRows([]BotButton{
		{ID: 1, RowNumber: 2, OrderInRow: 1},
		{ID: 2, RowNumber: 1, OrderInRow: 0},
		{ID: 3, RowNumber: 2, OrderInRow: 0},
		{ID: 4, RowNumber: 2, OrderInRow: 0},
	}, []int{5, 2})

	require.Equal(t, []int{1, 2, 5}, rowNumbers(rows))
	assert.Equal(t, []int64{2}, rowIDs(rows[0]))
	assert.Equal(t, []int64{3, 4, 1}, rowIDs(rows[1]), "ties keep input order")
	assert.NotNil(t, rows[2].Buttons)
	assert.Empty(t, rows[2].Buttons)
}

func TestBuildRowsEmpty(t *testing.T) {
	rows := BuildRows(nil, nil)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestMoveButtonWithinRowClampsIndex(t *testing.T) {
	rows := BuildRows([]BotButton{
		{ID: 1, RowNumber: 1, OrderInRow: 0},
		{ID: 2, RowNumber: 1, OrderInRow: 1},
		{ID: 3, RowNumber: 1, OrderInRow: 2},
	}, nil)

	moved, err := moveButton(rows, 1, 1, 99)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 1}, rowIDs(moved[0]))
	for i, b := range moved[0].Buttons {
		assert.Equal(t, i, b.OrderInRow)
	}

	moved, err = moveButton(rows, 3, 1, -4)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, rowIDs(moved[0]))

	assert.Equal(t, []int64{1, 2, 3}, rowIDs(rows[0]), "input rows are not mutated")
}

func TestMoveButtonCreatesTargetRowInOrder(t *testing.T) {
	rows := BuildRows([]BotButton{
		{ID: 1, RowNumber: 2, OrderInRow: 0},
		{ID: 2, RowNumber: 4, OrderInRow: 0},
	}, nil)

	moved, err := moveButton(rows, 2, 1, 0)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 4}, rowNumbers(moved))
	assert.Equal(t, []int64{2}, rowIDs(moved[0]))
	assert.Equal(t, 1, moved[0].Buttons[0].RowNumber)
	assert.Empty(t, moved[2].Buttons)
}

func TestMoveButtonErrors(t *testing.T) {
	rows := BuildRows([]BotButton{{ID: 1, RowNumber: 1}}, nil)

	_, err := moveButton(rows, 9, 1, 0)
	assert.ErrorIs(t, err, ErrUnknownButton)

	_, err = moveButton(rows, 1, 0, 0)
	assert.True(t, IsValidation(err))
}

func TestPositionsOfUsesDisplayPositions(t *testing.T) {
	rows := []Row{
		{Number: 1, Buttons: []BotButton{{ID: 5, RowNumber: 9, OrderInRow: 7}, {ID: 6}}},
		{Number: 2, Buttons: []BotButton{}},
		{Number: 3, Buttons: []BotButton{{ID: 5}, {ID: 8}}},
	}
	assert.Equal(t, []ButtonPosition{
		{ID: 5, RowNumber: 1, OrderInRow: 0},
		{ID: 6, RowNumber: 1, OrderInRow: 1},
		{ID: 8, RowNumber: 3, OrderInRow: 1},
	}, positionsOf(rows))
}

func TestEmptyAndMaxRowNumbers(t *testing.T) {
	rows := []Row{
		{Number: 1, Buttons: []BotButton{{ID: 1}}},
		{Number: 4, Buttons: []BotButton{}},
	}
	assert.Equal(t, []int{4}, emptyRowNumbers(rows))
	assert.Equal(t, 4, maxRowNumber(rows))
	assert.Equal(t, 0, maxRowNumber(nil))
}

func randomButtons(rng *rand.Rand) []BotButton {
	count := 1 + rng.Intn(12)
	items := make([]BotButton, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, BotButton{
			ID:         int64(i + 1),
			RowNumber:  1 + rng.Intn(4),
			OrderInRow: rng.Intn(4),
		})
	}
	rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	return items
}

func idsWithout(row Row, id int64) []int64 {
	out := []int64{}
	for _, b := range row.Buttons {
		if b.ID != id {
			out = append(out, b.ID)
		}
	}
	return out
}

func TestLayoutInvariantsHoldForRandomGrids(t *testing.T) {
	for seed := int64(1); seed <= 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		items := randomButtons(rng)

		rows := BuildRows(items, []int{rng.Intn(6) + 1})
		total := 0
		for i, row := range rows {
			if i > 0 && row.Number <= rows[i-1].Number {
				t.Fatalf("seed %d: row numbers not strictly increasing: %v", seed, rowNumbers(rows))
			}
			for j := 1; j < len(row.Buttons); j++ {
				if row.Buttons[j].OrderInRow < row.Buttons[j-1].OrderInRow {
					t.Fatalf("seed %d: row %d not sorted by order_in_row", seed, row.Number)
				}
			}
			total += len(row.Buttons)
		}
		require.Equal(t, len(items), total, "seed %d", seed)

		id := items[rng.Intn(len(items))].ID
		target := 1 + rng.Intn(6)
		index := rng.Intn(8) - 2

		moved, err := moveButton(rows, id, target, index)
		require.NoError(t, err, "seed %d", seed)

		targetLen := 0
		if r := rowIndex(rows, target); r >= 0 {
			targetLen = len(idsWithout(rows[r], id))
		}
		want := index
		if want < 0 {
			want = 0
		}
		if want > targetLen {
			want = targetLen
		}
		r, p := locateButton(moved, id)
		require.GreaterOrEqual(t, r, 0, "seed %d", seed)
		assert.Equal(t, target, moved[r].Number, "seed %d", seed)
		assert.Equal(t, want, p, "seed %d", seed)
		assert.Equal(t, want, moved[r].Buttons[p].OrderInRow, "seed %d", seed)

		for _, row := range moved {
			before := []int64{}
			if i := rowIndex(rows, row.Number); i >= 0 {
				before = idsWithout(rows[i], id)
			}
			assert.Equal(t, before, idsWithout(row, id), "seed %d: row %d lost relative order", seed, row.Number)
		}

		positions := positionsOf(moved)
		require.Len(t, positions, len(items), "seed %d", seed)
		seen := make(map[int64]bool, len(positions))
		for _, pos := range positions {
			assert.False(t, seen[pos.ID], "seed %d: id %d sent twice", seed, pos.ID)
			seen[pos.ID] = true
			ri, pi := locateButton(moved, pos.ID)
			assert.Equal(t, moved[ri].Number, pos.RowNumber, "seed %d", seed)
			assert.Equal(t, pi, pos.OrderInRow, "seed %d", seed)
		}
	}
}
