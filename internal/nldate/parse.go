// Package nldate interpreta datas relativas em português ("amanhã às 10h",
// "sexta 14h30", "hoje") usadas pelos comandos do concierge.
//
// Não há suporte para expressões como "em 3 dias" ou nomes de meses.
package nldate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrUnparseableDate = errors.New("data não reconhecida")
	ErrInvalidTime     = errors.New("horário inválido")
)

// Clock é o horário aplicado quando o texto não traz hora.
type Clock struct {
	Hour   int
	Minute int
}

var (
	ReminderDefault = Clock{Hour: 9}
	PostDefault     = Clock{Hour: 10}
)

var weekdayNames = []struct {
	names []string
	day   time.Weekday
}{
	{[]string{"segunda"}, time.Monday},
	{[]string{"terça", "terca"}, time.Tuesday},
	{[]string{"quarta"}, time.Wednesday},
	{[]string{"quinta"}, time.Thursday},
	{[]string{"sexta"}, time.Friday},
	{[]string{"sábado", "sabado"}, time.Saturday},
	{[]string{"domingo"}, time.Sunday},
}

var timeToken = regexp.MustCompile(`(\d{1,2})[h:.]?(\d{0,2})`)

// Layouts aceitos no fallback; os que carregam hora não recebem o Clock padrão.
var (
	dateTimeLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"02/01/2006 15:04",
	}
	dateOnlyLayouts = []string{
		"2006-01-02",
		"02/01/2006",
	}
)

// ParseRelativeDate resolve o texto relativo a now. Ordem: amanhã, hoje,
// dia da semana (sempre a próxima ocorrência, nunca o próprio dia) e por fim
// data ISO/brasileira. O resultado fica no fuso de now.
func ParseRelativeDate(text string, now time.Time, def Clock) (time.Time, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return time.Time{}, ErrUnparseableDate
	}

	offset, ok := relativeOffset(normalized, now.Weekday())
	if ok {
		clock, err := extractClock(normalized, def)
		if err != nil {
			return time.Time{}, err
		}
		return at(now, offset, clock), nil
	}

	return parseAbsolute(strings.TrimSpace(text), now.Location(), def)
}

func relativeOffset(text string, today time.Weekday) (int, bool) {
	if strings.Contains(text, "amanhã") || strings.Contains(text, "amanha") {
		return 1, true
	}
	if strings.Contains(text, "hoje") {
		return 0, true
	}

	for _, wd := range weekdayNames {
		for _, name := range wd.names {
			if !strings.Contains(text, name) {
				continue
			}
			diff := int(wd.day) - int(today)
			if diff <= 0 {
				diff += 7
			}
			return diff, true
		}
	}

	return 0, false
}

// extractClock usa o último token de hora do texto ("10h", "14:30", "9").
func extractClock(text string, def Clock) (Clock, error) {
	matches := timeToken.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return def, nil
	}

	last := matches[len(matches)-1]
	hour, _ := strconv.Atoi(last[1])
	minute := 0
	if last[2] != "" {
		minute, _ = strconv.Atoi(last[2])
	}

	if hour > 23 || minute > 59 {
		return Clock{}, fmt.Errorf("%w: %s", ErrInvalidTime, last[0])
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

func parseAbsolute(raw string, loc *time.Location, def Clock) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.In(loc), nil
		}
	}

	for _, layout := range dateOnlyLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), def.Hour, def.Minute, 0, 0, loc), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, raw)
}

func at(now time.Time, offsetDays int, clock Clock) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+offsetDays, clock.Hour, clock.Minute, 0, 0, now.Location())
}
