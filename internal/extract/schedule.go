package extract

import "github.com/joseph-ayodele/eventforms/constants"

// cellRef places a field at a logical row; the physical table and row follow from the
// schedule's table size.
type cellRef struct {
	Field constants.Field
	Row   int
}

// schedule is the positional map of one docx template.
type schedule struct {
	Layout    constants.Layout
	TableSize int // rows per table
	Column    int
	MaxTables int // tables beyond this are ignored; 0 = no limit
	Cells     []cellRef
}

func (s schedule) locate(logicalRow int) (table, row int) {
	return logicalRow / s.TableSize, logicalRow % s.TableSize
}

var newSchedule = schedule{
	Layout:    constants.LayoutNew,
	TableSize: 7,
	Column:    1,
	MaxTables: 3,
	Cells: []cellRef{
		{constants.EventName, 0},
		{constants.Department, 1},
		{constants.DateOfEvent, 2},
		{constants.DateOfInstallation, 3},
		{constants.Order, 4},
		{constants.Participants, 5},
		{constants.Responsible, 6},
		{constants.EventFormat, 7},
		{constants.GuestsOfHonor, 8},
		{constants.EventLevel, 9},
		{constants.Schedule, 10},
		{constants.TechnicalEquipment, 14},
		{constants.AudioTraining, 15},
	},
}

var oldSchedule = schedule{
	Layout:    constants.LayoutOld,
	TableSize: 6,
	Column:    2,
	Cells: []cellRef{
		{constants.Department, 0},
		{constants.DateOfEvent, 1},
		{constants.EventFormat, 2},
		{constants.Participants, 3},
		{constants.EventName, 4},
		{constants.Schedule, 4},
	},
}

// legacy template keeps equipment in two rows of the first table
var oldEquipmentCells = [][3]int{{0, 8, 2}, {0, 5, 2}}

func scheduleFor(layout constants.Layout) schedule {
	if layout == constants.LayoutNew {
		return newSchedule
	}
	return oldSchedule
}
