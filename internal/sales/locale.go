package sales

import "time"

// MonthNames are the Spanish month names, index 0 is January.
var MonthNames = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// WeekdayNames are the Spanish weekday names, index 0 is Monday.
var WeekdayNames = [7]string{
	"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo",
}

// MonthName returns the Spanish name of month m (1..12), or "" when out of range.
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return MonthNames[m-1]
}

// MonthNumber returns 1..12 for a Spanish month name, or 0 when unknown.
func MonthNumber(name string) int {
	for i, n := range MonthNames {
		if n == name {
			return i + 1
		}
	}
	return 0
}

// WeekdayIndex maps a time.Weekday to 0=Monday .. 6=Sunday
func WeekdayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// WeekdayName returns the Spanish name for index 0..6, or "" when out of range.
func WeekdayName(idx int) string {
	if idx < 0 || idx > 6 {
		return ""
	}
	return WeekdayNames[idx]
}

// IsWeekdayName reports whether name is one of WeekdayNames
func IsWeekdayName(name string) bool {
	for _, n := range WeekdayNames {
		if n == name {
			return true
		}
	}
	return false
}
