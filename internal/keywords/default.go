package keywords

import "github.com/joseph-ayodele/eventforms/constants"

// label variants seen across template revisions
var defaultFields = map[constants.Field][]string{
	constants.EventName:          {"Название мероприятия"},
	constants.Department:         {"Организатор", "Подразделение"},
	constants.DateOfEvent:        {"Даты проведения мероприятия"},
	constants.DateOfInstallation: {"Даты монтажа", "подготовки площадки"},
	constants.Order:              {"Приказ об организации"},
	constants.Participants:       {"Количество участников", "контингент"},
	constants.Responsible:        {"Ответственный за проведение"},
	constants.EventFormat:        {"Формат мероприятия"},
	constants.GuestsOfHonor:      {"Почетные гости", "ведущие мероприятия"},
	constants.EventLevel:         {"Уровень мероприятия"},
	constants.Schedule:           {"Расписание", "разбивка по времени"},
	constants.TechnicalEquipment: {"Необходимое техническое оснащение"},
	constants.AudioTraining:      {"Обучение работе", "звуковом оборудовании"},
}

// header cells that mark a PDF table as the registration form
var defaultTableHeaders = []string{
	"Название мероприятия",
	"Организатор",
	"Даты проведения",
}

// NewTemplateMarker is the first-cell phrase of the current docx template.
const NewTemplateMarker = "Название мероприятия"
