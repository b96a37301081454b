package einvoice

import (
	"fmt"
	"time"
)

// Date es una fecha de calendario sin hora ni zona horaria.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate construye una fecha de calendario.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf toma año, mes y día de t en su propia zona horaria (sin convertir a UTC).
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsZero informa si la fecha no fue informada.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Before compara por componentes de calendario.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// AddDays suma días naturales; la aritmética se hace en UTC a mediodía para no cruzar cambios de horario.
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return DateOf(t)
}

// String devuelve la fecha en formato ISO (YYYY-MM-DD).
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// FormatDate102 codifica la fecha con el calificador UN/CEFACT "102" (YYYYMMDD).
func FormatDate102(d Date) string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Day)
}
