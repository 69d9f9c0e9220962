package salon

import (
	"fmt"
	"sort"
)

// BuildRows groups buttons by row_number, orders each row by order_in_row
// and adds the requested placeholder rows. Row numbers come out strictly
// increasing; equal order_in_row values keep their input order.
func BuildRows(items []BotButton, extraRows []int) []Row {
	grouped := make(map[int][]BotButton)
	for _, item := range items {
		grouped[item.RowNumber] = append(grouped[item.RowNumber], item)
	}
	for _, number := range extraRows {
		if _, ok := grouped[number]; !ok {
			grouped[number] = nil
		}
	}
	numbers := make([]int, 0, len(grouped))
	for number := range grouped {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)

	rows := make([]Row, 0, len(numbers))
	for _, number := range numbers {
		buttons := grouped[number]
		sort.SliceStable(buttons, func(i, j int) bool {
			return buttons[i].OrderInRow < buttons[j].OrderInRow
		})
		if buttons == nil {
			buttons = []BotButton{}
		}
		rows = append(rows, Row{Number: number, Buttons: buttons})
	}
	return rows
}

// moveButton returns a copy of rows with the button removed from its current
// row and inserted into target at index. The target row is created in sorted
// position when missing and index is clamped to the row length. Source and
// target rows are renumbered from their final positions.
func moveButton(rows []Row, id int64, target, index int) ([]Row, error) {
	if target < 1 {
		return nil, &ValidationError{Field: "row_number", Reason: fmt.Sprintf("must be at least 1, got %d", target)}
	}
	out := cloneRows(rows)

	sourceIdx, position := locateButton(out, id)
	if sourceIdx < 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownButton, id)
	}
	source := out[sourceIdx].Buttons
	moved := source[position]
	out[sourceIdx].Buttons = append(source[:position:position], source[position+1:]...)

	targetIdx := rowIndex(out, target)
	if targetIdx < 0 {
		targetIdx = sort.Search(len(out), func(i int) bool { return out[i].Number > target })
		out = append(out, Row{})
		copy(out[targetIdx+1:], out[targetIdx:])
		out[targetIdx] = Row{Number: target, Buttons: []BotButton{}}
		if targetIdx <= sourceIdx {
			sourceIdx++
		}
	}

	buttons := out[targetIdx].Buttons
	if index < 0 {
		index = 0
	}
	if index > len(buttons) {
		index = len(buttons)
	}
	next := make([]BotButton, 0, len(buttons)+1)
	next = append(next, buttons[:index]...)
	next = append(next, moved)
	next = append(next, buttons[index:]...)
	out[targetIdx].Buttons = next

	renumberRow(&out[sourceIdx])
	renumberRow(&out[targetIdx])
	return out, nil
}

func renumberRow(row *Row) {
	for i := range row.Buttons {
		row.Buttons[i].RowNumber = row.Number
		row.Buttons[i].OrderInRow = i
	}
}

func locateButton(rows []Row, id int64) (int, int) {
	for r, row := range rows {
		for p, button := range row.Buttons {
			if button.ID == id {
				return r, p
			}
		}
	}
	return -1, -1
}

func rowIndex(rows []Row, number int) int {
	for i, row := range rows {
		if row.Number == number {
			return i
		}
	}
	return -1
}

func cloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		out[i] = Row{Number: row.Number, Buttons: append([]BotButton{}, row.Buttons...)}
	}
	return out
}

func flattenRows(rows []Row) []BotButton {
	var items []BotButton
	for _, row := range rows {
		items = append(items, row.Buttons...)
	}
	return items
}

// positionsOf lists every button once, numbered from its display position.
func positionsOf(rows []Row) []ButtonPosition {
	seen := make(map[int64]struct{})
	var out []ButtonPosition
	for _, row := range rows {
		for idx, button := range row.Buttons {
			if _, dup := seen[button.ID]; dup {
				continue
			}
			seen[button.ID] = struct{}{}
			out = append(out, ButtonPosition{
				ID:         button.ID,
				RowNumber:  row.Number,
				OrderInRow: idx,
			})
		}
	}
	return out
}

func emptyRowNumbers(rows []Row) []int {
	var out []int
	for _, row := range rows {
		if len(row.Buttons) == 0 {
			out = append(out, row.Number)
		}
	}
	return out
}

func maxRowNumber(rows []Row) int {
	highest := 0
	for _, row := range rows {
		if row.Number > highest {
			highest = row.Number
		}
	}
	return highest
}
