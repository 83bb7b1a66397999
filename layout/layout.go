package layout

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wippyai/fasttuple/schema"
)

// Slot is the placement of one field.
type Slot struct {
	Name   string
	Kind   schema.Kind
	Offset uint32
	Size   uint32
}

// End returns the first byte past the slot.
func (s Slot) End() uint32 {
	return s.Offset + s.Size
}

// Layout is the byte-level placement of a schema. Slots are indexed in
// declaration order; Order lists them in placement order. A Layout is
// immutable and shared by every tuple of its schema.
type Layout struct {
	byName  map[string]int
	Slots   []Slot
	Order   []int
	Size    uint32
	Align   uint32
	Options Options
}

// Offset returns the byte offset of the named field.
func (l *Layout) Offset(name string) (uint32, bool) {
	i, ok := l.byName[name]
	if !ok {
		return 0, false
	}
	return l.Slots[i].Offset, true
}

// FieldSize returns the byte width of the named field.
func (l *Layout) FieldSize(name string) (uint32, bool) {
	i, ok := l.byName[name]
	if !ok {
		return 0, false
	}
	return l.Slots[i].Size, true
}

// Padding returns the number of bytes not covered by any field.
func (l *Layout) Padding() uint32 {
	used := uint32(0)
	for _, s := range l.Slots {
		used += s.Size
	}
	return l.Size - used
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Table renders the layout in placement order for diagnostics.
func (l *Layout) Table() string {
	rows := make([][]string, 0, len(l.Order)+1)
	for _, idx := range l.Order {
		s := l.Slots[idx]
		rows = append(rows, []string{
			s.Name,
			s.Kind.String(),
			strconv.FormatUint(uint64(s.Offset), 10),
			strconv.FormatUint(uint64(s.Size), 10),
		})
	}
	rows = append(rows, []string{
		"(total)",
		l.Options.Strategy.String(),
		"align " + strconv.FormatUint(uint64(l.Align), 10),
		strconv.FormatUint(uint64(l.Size), 10),
	})

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("FIELD", "KIND", "OFFSET", "SIZE").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}
