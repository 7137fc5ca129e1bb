package clinic

import (
	"fmt"
	"time"
)

var weekdaysAR = [7]string{"الأحد", "الاثنين", "الثلاثاء", "الأربعاء", "الخميس", "الجمعة", "السبت"}

var monthsAR = [12]string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

// FormatLongDate renders a date like "الأحد، 10 يونيو 2024" (AR)
// or "Sunday, Jun 10 2024" (EN).
func FormatLongDate(loc Locale, t time.Time) string {
	if loc == LocaleAR {
		return fmt.Sprintf("%s، %02d %s %d", weekdaysAR[t.Weekday()], t.Day(), monthsAR[t.Month()-1], t.Year())
	}
	return t.Format("Monday, Jan 02 2006")
}

// FormatDayDate renders a short date row title like "الأحد، 10 يونيو" (AR)
// or "Sunday, Jun 10" (EN).
func FormatDayDate(loc Locale, t time.Time) string {
	if loc == LocaleAR {
		return fmt.Sprintf("%s، %02d %s", weekdaysAR[t.Weekday()], t.Day(), monthsAR[t.Month()-1])
	}
	return t.Format("Monday, Jan 02")
}

// FormatDateTime renders a compact date-time like "10/06/2024 - 15:30" (AR)
// or "Jun 10, 2024 - 3:30 PM" (EN).
func FormatDateTime(loc Locale, t time.Time) string {
	if loc == LocaleAR {
		return t.Format("02/01/2006 - 15:04")
	}
	return t.Format("Jan 02, 2006 - 3:04 PM")
}
