package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/joseph-ayodele/eventforms/constants"
	"github.com/joseph-ayodele/eventforms/internal/common"
	"github.com/joseph-ayodele/eventforms/internal/keywords"
	"github.com/joseph-ayodele/eventforms/internal/pdfdoc"
	"github.com/joseph-ayodele/eventforms/internal/pdfdoc/pdftest"
)

// layoutDoc builds a one-page document from pdftotext-style layout text.
func layoutDoc(text string) *pdfdoc.Document {
	return pdfdoc.NewDocument(1, pdfdoc.LayoutLines(text), pdfdoc.Config{})
}

type stubSource struct {
	doc *pdfdoc.Document
	err error
}

func (s stubSource) Open(context.Context, string) (*pdfdoc.Document, error) {
	return s.doc, s.err
}

func TestClassifyPDF(t *testing.T) {
	m := keywords.Default()
	tests := []struct {
		name string
		doc  *pdfdoc.Document
		want constants.Layout
	}{
		{"no pages", pdfdoc.NewDocument(0, nil, pdfdoc.Config{}), constants.LayoutEmptyPDF},
		{"nil document", nil, constants.LayoutEmptyPDF},
		{"pipe form", layoutDoc("Заявка\n|1|Иванов|\n|2|12 мая|"), constants.LayoutOldPDFFormat},
		{"pipe form with spaces", layoutDoc("| 1 | Иванов |"), constants.LayoutOldPDFFormat},
		{"header table", layoutDoc("Организатор        Кафедра\nУчастники          40"), constants.LayoutPDFTable},
		{"table without header marker", layoutDoc("Подпись        Иванов\nДата           12 мая"), constants.LayoutPDFText},
		{"plain text", layoutDoc("Формат мероприятия: Очный"), constants.LayoutPDFText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyPDF(tt.doc, m); got != tt.want {
				t.Fatalf("ClassifyPDF = %q, want %q", got, tt.want)
			}
			// classification is a pure function of the document
			if got := ClassifyPDF(tt.doc, m); got != tt.want {
				t.Fatalf("second ClassifyPDF = %q", got)
			}
		})
	}
}

func TestIsOldForm(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"|1|John Doe|", true},
		{"   |1| x", true},
		{"|  1  |x|", true},
		{"|10|x|", false},
		{"1|x|", false},
		{"text |1| inside", false},
	}
	for _, tt := range tests {
		if got := IsOldForm(tt.text); got != tt.want {
			t.Errorf("IsOldForm(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestEmptyPDF(t *testing.T) {
	e := NewPDFExtractor(stubSource{doc: pdfdoc.NewDocument(0, nil, pdfdoc.Config{})}, nil, quietLogger())
	rec, err := e.Extract(context.Background(), "empty.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Layout != constants.LayoutEmptyPDF {
		t.Fatalf("layout = %q", rec.Layout)
	}
	if !rec.Fields.Empty() {
		t.Fatalf("fields not empty: %v", rec.Fields.Map())
	}
	if got := len(rec.Fields.Map()); got != len(constants.CanonicalFields()) {
		t.Fatalf("key count = %d", got)
	}
}

func TestEmptyPDFFromReader(t *testing.T) {
	src := stubSource{doc: &pdfdoc.Document{}, err: fmt.Errorf("%w: x.pdf has no pages", common.ErrEmptyDocument)}
	rec, err := NewPDFExtractor(src, nil, quietLogger()).Extract(context.Background(), "x.pdf")
	if err != nil {
		t.Fatalf("empty document should not fail: %v", err)
	}
	if rec.Layout != constants.LayoutEmptyPDF || !rec.Fields.Empty() {
		t.Fatalf("got %q %v", rec.Layout, rec.Fields.Map())
	}
}

func TestOldFormMergesClauses(t *testing.T) {
	text := strings.Join([]string{
		"ЗАЯВКА НА БРОНИРОВАНИЕ",
		"|1|John Doe|",
		"|2|Дата и время бронирования|12.05.2025 10:00|",
		"|3|Формат проведения мероприятия|Очный|",
		"|4|Контингент (кол-во, состав)|40 студентов|",
		"|5|Повестка/программа|Семинар|",
		"|6.1|Телевизоры/проектор|Проектор|",
		"|6.2|Звуковая аппаратура|Микрофон|",
		"|6.3|Обучение работе с техникой|Нет|",
		"|7|Дополнительные требования|Флипчарт|",
		"|9.1|Ответственный организатор (ФИО)|Петров П.П.|",
		"|9.2|Контактный телефон|+7 900 000-00-00|",
	}, "\n")
	e := NewPDFExtractor(stubSource{doc: layoutDoc(text)}, keywords.Default(), quietLogger())
	rec, err := e.Extract(context.Background(), "old.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Layout != constants.LayoutOldPDFFormat {
		t.Fatalf("layout = %q", rec.Layout)
	}
	want := map[constants.Field]string{
		constants.Responsible:        "John Doe / Петров П.П. (тел.: +7 900 000-00-00)",
		constants.DateOfEvent:        "12.05.2025 10:00",
		constants.EventFormat:        "Очный. Доп.требования: Флипчарт",
		constants.Participants:       "40 студентов",
		constants.EventName:          "Семинар",
		constants.TechnicalEquipment: "Проектор, Микрофон",
		constants.AudioTraining:      "Нет",
		constants.Department:         "",
	}
	for f, v := range want {
		if got := rec.Fields.Get(f); got != v {
			t.Errorf("%s = %q, want %q", f, got, v)
		}
	}
}

func TestOldFormResponsibleJoin(t *testing.T) {
	fields := ParseOldForm("|1|John Doe|\n|2|x|\n|9.1|Ответственный организатор (ФИО)|Jane Roe|")
	if got := fields.Get(constants.Responsible); got != "John Doe / Jane Roe" {
		t.Fatalf("Responsible = %q", got)
	}
}

func TestOldFormSpaceRendering(t *testing.T) {
	text := strings.Join([]string{
		"1 Заявитель (ФИО) Иванов И.И.",
		"5. Повестка/программа Семинар по",
		"квантовой физике",
		"6.2 Звуковая аппаратура: микрофон",
	}, "\n")
	fields := ParseOldForm(text)
	want := map[constants.Field]string{
		constants.Responsible:        "Иванов И.И.",
		constants.EventName:          "Семинар по квантовой физике",
		constants.TechnicalEquipment: "микрофон",
	}
	for f, v := range want {
		if got := fields.Get(f); got != v {
			t.Errorf("%s = %q, want %q", f, got, v)
		}
	}
}

func TestOldFormNumberedContinuations(t *testing.T) {
	text := strings.Join([]string{
		"3 Формат проведения мероприятия Очный",
		"4 Контингент (кол-во, состав) студенты",
		"25 человек из группы",
		"8 Согласовано",
		"ФФ-21",
		"5 Повестка/программа Семинар",
	}, "\n")
	fields := ParseOldForm(text)
	want := map[constants.Field]string{
		constants.EventFormat:  "Очный",
		constants.Participants: "студенты 25 человек из группы ФФ-21",
		constants.EventName:    "Семинар",
	}
	for f, v := range want {
		if got := fields.Get(f); got != v {
			t.Errorf("%s = %q, want %q", f, got, v)
		}
	}
}

func TestPDFTableScenario(t *testing.T) {
	text := strings.Join([]string{
		"Организатор                    Кафедра физики",
		"Даты проведения мероприятия    12 мая",
		"Организатор                    Другая кафедра",
		"Примечание                     -",
	}, "\n")
	rec := ExtractPDF(layoutDoc(text), keywords.Default())
	if rec.Layout != constants.LayoutPDFTable {
		t.Fatalf("layout = %q", rec.Layout)
	}
	if got := rec.Fields.Get(constants.Department); got != "Кафедра физики" {
		t.Errorf("Department = %q, first match must win", got)
	}
	if got := rec.Fields.Get(constants.DateOfEvent); got != "12 мая" {
		t.Errorf("Date of event = %q", got)
	}
}

func TestExtractTablesWideRows(t *testing.T) {
	tables := []pdfdoc.Table{
		{Rows: [][]string{
			{"1", "Название мероприятия", "", "Конференция"},
			{"2", "Количество участников", "", ""},
			{"Формат мероприятия", "", "", "Очный"},
		}},
		{Rows: [][]string{
			{"", "Название мероприятия", "", "Другое"},
			{"", "Уровень мероприятия", "", "Вузовский"},
		}},
	}
	fields := ExtractTables(tables, keywords.Default())
	want := map[constants.Field]string{
		constants.EventName:    "Конференция",
		constants.Participants: "",
		constants.EventFormat:  "Очный",
		constants.EventLevel:   "Вузовский",
	}
	for f, v := range want {
		if got := fields.Get(f); got != v {
			t.Errorf("%s = %q, want %q", f, got, v)
		}
	}
}

func TestSplitRow(t *testing.T) {
	tests := []struct {
		row    []string
		labels []string
		value  string
	}{
		{[]string{"a", "b", "c", "d", "e"}, []string{"a", "b"}, "d"},
		{[]string{"a", "", "v"}, []string{"a"}, "v"},
		{[]string{"a", "b", "v"}, []string{"a", "b"}, "v"},
		{[]string{"only"}, nil, ""},
		{[]string{"", ""}, nil, ""},
	}
	for _, tt := range tests {
		labels, value := splitRow(tt.row)
		if strings.Join(labels, "|") != strings.Join(tt.labels, "|") || value != tt.value {
			t.Errorf("splitRow(%q) = %q, %q; want %q, %q", tt.row, labels, value, tt.labels, tt.value)
		}
	}
}

func TestScanTextScenario(t *testing.T) {
	text := strings.Join([]string{
		"Заявка на проведение",
		"Формат мероприятия: Очный",
		"Расписание - 10:00 открытие",
		"11:00   доклады",
		"1. Уровень мероприятия: вузовский",
	}, "\n")
	rec := ExtractPDF(layoutDoc(text), keywords.Default())
	if rec.Layout != constants.LayoutPDFText {
		t.Fatalf("layout = %q", rec.Layout)
	}
	want := map[constants.Field]string{
		constants.EventFormat: "Очный",
		constants.Schedule:    "10:00 открытие 11:00 доклады",
		constants.EventLevel:  "вузовский",
		constants.EventName:   "",
	}
	for f, v := range want {
		if got := rec.Fields.Get(f); got != v {
			t.Errorf("%s = %q, want %q", f, got, v)
		}
	}
}

func TestPDFExtractorSourceError(t *testing.T) {
	srcErr := common.Unreadable(errors.New("bad xref"), "open pdf")
	e := NewPDFExtractor(stubSource{err: srcErr}, nil, quietLogger())
	rec, err := e.Extract(context.Background(), "broken.pdf")
	if !errors.Is(err, common.ErrUnreadableFile) {
		t.Fatalf("err = %v", err)
	}
	if rec.Layout != constants.LayoutError {
		t.Fatalf("layout = %q", rec.Layout)
	}
}

func TestCleanText(t *testing.T) {
	tests := map[string]string{
		"":                      "",
		"  a \n\t b ":           "a b",
		"e\u0301":               "\u00e9",
		"Кафедра\u00a0физики":   "Кафедра физики",
		"Кафедра\r\n\r\nфизики": "Кафедра физики",
	}
	for in, want := range tests {
		if got := CleanText(in); got != want {
			t.Errorf("CleanText(%q) = %q, want %q", in, got, want)
		}
	}
}

// latinMapping swaps in ASCII keywords so the generated Helvetica PDFs can carry them.
func latinMapping(t *testing.T) *keywords.Mapping {
	t.Helper()
	m, err := keywords.Parse([]byte(`
fields:
  Department: [Organizer]
  Event name: [Title]
  Participants: [Participants]
table_headers: [Organizer]
`))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func nativeExtractor(t *testing.T, m *keywords.Mapping) *PDFExtractor {
	t.Helper()
	reader, err := pdfdoc.NewReader(pdfdoc.Config{Backend: pdfdoc.BackendNative}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	return NewPDFExtractor(reader, m, quietLogger())
}

func TestNativePDFTableForm(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "form.pdf",
		"Registration form",
		"Organizer\tPhysics dept",
		"Title\tConference X",
		"Participants\t40",
	)
	rec, err := nativeExtractor(t, latinMapping(t)).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if rec.Layout != constants.LayoutPDFTable {
		t.Fatalf("layout = %q, want pdf_table", rec.Layout)
	}
	want := map[constants.Field]string{
		constants.Department:   "Physics dept",
		constants.EventName:    "Conference X",
		constants.Participants: "40",
	}
	for f, v := range want {
		if got := rec.Fields.Get(f); got != v {
			t.Errorf("%s = %q, want %q", f, got, v)
		}
	}
}

func TestPDFExtractionDeterministic(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name  string
		lines []string
	}{
		{"table", []string{"Organizer\tPhysics dept", "Title\tConference X"}},
		{"text", []string{"Title: Conference X", "Organizer: Physics dept"}},
		{"old form", []string{"|1|John Doe|", "|2|Date|12.05.2025|"}},
	}
	m := latinMapping(t)
	e := nativeExtractor(t, m)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := pdftest.Write(t, dir, tt.name+".pdf", tt.lines...)
			first, err := e.Extract(context.Background(), path)
			if err != nil {
				t.Fatal(err)
			}
			second, err := e.Extract(context.Background(), path)
			if err != nil {
				t.Fatal(err)
			}
			if first.Layout != second.Layout {
				t.Fatalf("layout %q then %q", first.Layout, second.Layout)
			}
			a, err := first.Fields.MarshalJSON()
			if err != nil {
				t.Fatal(err)
			}
			b, err := second.Fields.MarshalJSON()
			if err != nil {
				t.Fatal(err)
			}
			if string(a) != string(b) {
				t.Fatalf("extraction not deterministic:\n%s\n%s", a, b)
			}
		})
	}
}
