package importer

import (
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/importer"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type dayState int

const (
	stateNoDay dayState = iota
	stateDayOpenNoEntry
	stateDayOpenEntryOnly
	stateDayComplete
)

type eventKind int

const (
	eventEntry eventKind = iota + 1
	eventExit
)

var months = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"setiembre":  time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

var eventLabels = map[string]eventKind{
	"inicio de jornada":   eventEntry,
	"entrada":             eventEntry,
	"finaliza la jornada": eventExit,
	"salida":              eventExit,
}

var pauseLabels = map[string]bool{
	"pausa de jornada (comida)": true,
	"reanuda la jornada":        true,
}

var (
	weekdayPrefix = regexp.MustCompile(`^\w+,\s*`)
	trailingTime  = regexp.MustCompile(`\s*\d{1,2}:\d{2}$`)
)

// Scan walks the rows of a punch-clock export and yields one outcome per
// stored day or soft error. Every range over the result starts again from
// the first row.
func Scan(rows [][]string) iter.Seq[importer.Outcome] {
	return func(yield func(importer.Outcome) bool) {
		sc := &scanner{}
		for i, row := range rows {
			outcomes, stop := sc.step(i+1, row)
			for _, o := range outcomes {
				if !yield(o) {
					return
				}
			}
			if stop {
				break
			}
		}
		for _, o := range sc.flush("no exit punch before end of file") {
			if !yield(o) {
				return
			}
		}
	}
}

type scanner struct {
	state    dayState
	date     time.Time
	entry    clock.TimeOfDay
	entryRow int
}

func (sc *scanner) step(rowNum int, row []string) ([]importer.Outcome, bool) {
	if len(row) == 0 {
		return nil, false
	}
	first := strings.TrimSpace(row[0])
	if strings.Contains(strings.ToUpper(first), "RESUMEN") {
		return nil, true
	}

	label := fold(first)
	if label == "" || strings.Contains(label, "total tiempo") || strings.Contains(label, "tiempo total") {
		return nil, false
	}

	var second string
	if len(row) > 1 {
		second = fold(row[1])
	}
	if pauseLabels[second] {
		return nil, false
	}

	if date, ok := parseDateHeader(label); ok {
		out := sc.flush("no exit punch before the next day")
		sc.state = stateDayOpenNoEntry
		sc.date = date
		sc.entry = 0
		sc.entryRow = 0
		return out, false
	}

	kind, isEvent := eventLabels[second]
	if !isEvent || !strings.Contains(first, ":") {
		return nil, false
	}

	switch sc.state {
	case stateNoDay, stateDayComplete:
		return nil, false
	}

	at, err := clock.Parse(strings.Fields(first)[0])
	if err != nil {
		return sc.fail(rowNum, fmt.Sprintf("invalid punch time %q", first)), false
	}

	switch kind {
	case eventEntry:
		sc.entry = at
		sc.entryRow = rowNum
		sc.state = stateDayOpenEntryOnly
		return nil, false
	case eventExit:
		if sc.state != stateDayOpenEntryOnly {
			return []importer.Outcome{sc.softError(rowNum, "exit punch without an entry punch")}, false
		}
		out := importer.Outcome{
			Kind:  importer.OutcomeComplete,
			Date:  sc.date,
			Entry: sc.entry,
			Exit:  at,
			Row:   rowNum,
		}
		sc.state = stateDayComplete
		return []importer.Outcome{out}, false
	}
	return nil, false
}

// flush closes a day that only got its entry punch. The outcome points at
// the entry row.
func (sc *scanner) flush(reason string) []importer.Outcome {
	if sc.state != stateDayOpenEntryOnly {
		return nil
	}
	sc.state = stateDayComplete
	return []importer.Outcome{{
		Kind:   importer.OutcomeIncomplete,
		Date:   sc.date,
		Entry:  sc.entry,
		Row:    sc.entryRow,
		Reason: reason,
	}}
}

// fail reports a broken row and stores whatever the day already has.
func (sc *scanner) fail(rowNum int, reason string) []importer.Outcome {
	out := []importer.Outcome{sc.softError(rowNum, reason)}
	out = append(out, sc.flush("day closed after a row error")...)
	sc.state = stateDayComplete
	return out
}

func (sc *scanner) softError(rowNum int, reason string) importer.Outcome {
	return importer.Outcome{
		Kind:   importer.OutcomeSoftError,
		Date:   sc.date,
		Row:    rowNum,
		Reason: reason,
	}
}

// parseDateHeader reads labels such as "viernes, 01 marzo 2024 08:00".
func parseDateHeader(label string) (time.Time, bool) {
	if !strings.Contains(label, ",") || !mentionsMonth(label) {
		return time.Time{}, false
	}

	raw := weekdayPrefix.ReplaceAllString(strings.Trim(label, `"`), "")
	raw = trailingTime.ReplaceAllString(raw, "")
	parts := strings.Fields(strings.ReplaceAll(raw, " de ", " "))
	if len(parts) != 3 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	month, ok := months[parts[1]]
	if !ok {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil || year < 1900 {
		return time.Time{}, false
	}

	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day || date.Month() != month {
		return time.Time{}, false
	}
	return date, true
}

func mentionsMonth(label string) bool {
	for name := range months {
		if strings.Contains(label, name) {
			return true
		}
	}
	return false
}

// fold lowercases s and strips accents so "Miércoles" matches "miercoles".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
