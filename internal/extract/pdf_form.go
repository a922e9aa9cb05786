package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/eventforms/constants"
	"github.com/joseph-ayodele/eventforms/internal/entity"
)

// clause numbers of the legacy numbered booking form
const (
	clauseApplicant    = "1"
	clauseDate         = "2"
	clauseFormat       = "3"
	clauseAudience     = "4"
	clauseAgenda       = "5"
	clauseScreens      = "6.1"
	clauseSound        = "6.2"
	clauseTraining     = "6.3"
	clauseExtra        = "7"
	clauseOrganizer    = "9.1"
	clauseOrganizerTel = "9.2"
)

// printed labels, stripped from values in the space-separated rendering
var clauseLabels = map[string]string{
	clauseApplicant:    "Заявитель (ФИО)",
	clauseDate:         "Дата и время бронирования",
	clauseFormat:       "Формат проведения мероприятия",
	clauseAudience:     "Контингент (кол-во, состав)",
	clauseAgenda:       "Повестка/программа",
	clauseScreens:      "Телевизоры/проектор",
	clauseSound:        "Звуковая аппаратура",
	clauseTraining:     "Обучение работе с техникой",
	clauseExtra:        "Дополнительные требования",
	clauseOrganizer:    "Ответственный организатор (ФИО)",
	clauseOrganizerTel: "Контактный телефон",
}

var reClauseNumber = regexp.MustCompile(`^\d{1,2}(\.\d{1,2})?\.?$`)

// the form has no clause above 9; a larger leading number is part of the text
const lastClauseMajor = 9

// ParseOldForm reads the numbered clauses of the legacy form. Lines without a clause
// number continue the current clause. A line with an unknown clause number inside the
// form's range is dropped and the current clause stays open.
func ParseOldForm(text string) entity.Fields {
	clauses := make(map[string]string)
	current := ""
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		num, rest, ok := splitClause(line)
		if ok && clauseMajor(num) <= lastClauseMajor {
			num = strings.TrimSuffix(num, ".")
			if _, known := clauseLabels[num]; !known {
				continue
			}
			current = num
			clauses[num] = stripLabel(rest, clauseLabels[num])
			continue
		}
		if current == "" {
			continue
		}
		clauses[current] = joinNonEmpty(" ", clauses[current], continuation(line))
	}

	for k, v := range clauses {
		clauses[k] = CleanText(v)
	}

	fields := entity.NewFields()
	responsible := joinNonEmpty(" / ", clauses[clauseApplicant], clauses[clauseOrganizer])
	if tel := clauses[clauseOrganizerTel]; tel != "" {
		responsible = joinNonEmpty(" ", responsible, "(тел.: "+tel+")")
	}
	fields.Set(constants.Responsible, responsible)

	format := clauses[clauseFormat]
	if extra := clauses[clauseExtra]; extra != "" {
		if format == "" {
			format = "Доп.требования: " + extra
		} else {
			format = format + ". Доп.требования: " + extra
		}
	}
	fields.Set(constants.EventFormat, format)

	fields.Set(constants.DateOfEvent, clauses[clauseDate])
	fields.Set(constants.Participants, clauses[clauseAudience])
	fields.Set(constants.EventName, clauses[clauseAgenda])
	fields.Set(constants.TechnicalEquipment, joinNonEmpty(", ", clauses[clauseScreens], clauses[clauseSound]))
	fields.Set(constants.AudioTraining, clauses[clauseTraining])
	return fields
}

func clauseMajor(num string) int {
	head, _, _ := strings.Cut(strings.TrimSuffix(num, "."), ".")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0
	}
	return n
}

// splitClause separates a leading clause number from the rest of a line, in either the
// pipe-delimited or the space-separated rendering.
func splitClause(line string) (num, rest string, ok bool) {
	if strings.Contains(line, "|") {
		cells := pipeCells(line)
		if len(cells) == 0 || !reClauseNumber.MatchString(cells[0]) {
			return "", "", false
		}
		return cells[0], strings.Join(cells[1:], " | "), true
	}
	head, tail, _ := strings.Cut(line, " ")
	if !reClauseNumber.MatchString(head) {
		return "", "", false
	}
	return head, strings.TrimSpace(tail), true
}

func pipeCells(line string) []string {
	var cells []string
	for _, c := range strings.Split(line, "|") {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

// stripLabel drops the printed label from a clause remainder. In the pipe rendering the
// value is the last cell after the label.
func stripLabel(rest, label string) string {
	if strings.Contains(rest, " | ") {
		cells := strings.Split(rest, " | ")
		return cells[len(cells)-1]
	}
	if strings.HasPrefix(rest, label) {
		rest = strings.TrimLeft(strings.TrimPrefix(rest, label), " :-")
	}
	return rest
}

func continuation(line string) string {
	if strings.Contains(line, "|") {
		return strings.Join(pipeCells(line), " ")
	}
	return line
}
