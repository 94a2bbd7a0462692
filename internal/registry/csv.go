package registry

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Column headers of the official register CSV export.
const (
	csvID              = "Идентификатор записи реестра"
	csvCardNumber      = "Номер удостоверения"
	csvForeignTitle    = "Hаименование на иностранном языке"
	csvTitle           = "Название фильма"
	csvStudio          = "Студия-производитель"
	csvProductionYear  = "Год производства"
	csvDirector        = "Режиссер"
	csvScriptAuthor    = "Сценарист"
	csvComposer        = "Композитор"
	csvDurationMinutes = "Продолжительность демонстрации, минуты"
	csvDurationHours   = "Продолжительность демонстрации, часы"
	csvAgeCategory     = "Возрастная категория"
	csvAgeLimit        = "Возрастная категория (число)"
	csvAnnotation      = "Аннотация"
	csvCountry         = "Страна производства"
)

// ReadCSV parses a register CSV export into movies. Optional numeric columns
// may be blank; a blank value maps to the zero value.
func ReadCSV(r io.Reader) ([]Movie, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{csvID, csvTitle, csvCardNumber} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("csv header missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var movies []Movie
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}

		id, err := strconv.ParseInt(field(record, csvID), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: parse id: %w", line, err)
		}

		movies = append(movies, Movie{
			ID:              id,
			CardNumber:      field(record, csvCardNumber),
			Title:           field(record, csvTitle),
			ForeignTitle:    field(record, csvForeignTitle),
			Studio:          field(record, csvStudio),
			ProductionYear:  field(record, csvProductionYear),
			Director:        field(record, csvDirector),
			ScriptAuthor:    field(record, csvScriptAuthor),
			Composer:        field(record, csvComposer),
			DurationMinutes: optionalInt(field(record, csvDurationMinutes)),
			DurationHours:   optionalInt(field(record, csvDurationHours)),
			AgeCategory:     field(record, csvAgeCategory),
			AgeLimit:        optionalInt(field(record, csvAgeLimit)),
			Annotation:      field(record, csvAnnotation),
			Country:         field(record, csvCountry),
		})
	}
	return movies, nil
}

func optionalInt(value string) int {
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
