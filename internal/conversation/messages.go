package conversation

import (
	"fmt"
	"strings"
)

// All patient-facing copy lives here so the state handlers stay readable and
// the two locales cannot drift apart silently.

func pick(arabic bool, ar, en string) string {
	if arabic {
		return ar
	}
	return en
}

func welcomeBody(arabic bool, greeted bool, name string) string {
	var greeting string
	switch {
	case greeted && arabic:
		greeting = "أهلاً وسهلاً"
		if name != "" {
			greeting += " " + name
		}
		greeting += " 👋"
	case greeted:
		greeting = "Welcome"
		if name != "" {
			greeting += " " + name
		}
		greeting += "! 👋"
	case arabic:
		greeting = "أهلاً بك في عيادتنا 👋"
	default:
		greeting = "Welcome to our clinic 👋"
	}
	return greeting + pick(arabic, "\n\nكيف يمكنني مساعدتك اليوم؟", "\n\nHow can I help you today?")
}

func menuButtons(arabic bool) (book, myAppointments, cancel string) {
	return pick(arabic, "📅 حجز موعد", "📅 Book Appointment"),
		pick(arabic, "📋 مواعيدي", "📋 My Appointments"),
		pick(arabic, "❌ إلغاء موعد", "❌ Cancel Appointment")
}

func noServicesBody(arabic bool) string {
	return pick(arabic,
		"عذراً، لا توجد خدمات متاحة حالياً. يرجى التواصل مع العيادة.",
		"Sorry, no services are available right now. Please contact the clinic.")
}

func noDoctorsBody(arabic bool) string {
	return pick(arabic,
		"عذراً، لا يوجد أطباء متاحون لهذه الخدمة حالياً.",
		"Sorry, no doctors are available for this service right now.")
}

func selectionNotUnderstoodBody(arabic bool) string {
	return pick(arabic,
		"لم أفهم اختيارك. من فضلك اختر من القائمة.",
		"I didn't understand your selection. Please choose from the list.")
}

func loadingAppointmentsBody(arabic bool) string {
	return pick(arabic, "⏳ جاري تحميل مواعيدك...", "⏳ Loading your appointments...")
}

func cancelPromptBody(arabic bool) string {
	return pick(arabic,
		"من فضلك أرسل رقم الموعد الذي تريد إلغاءه، أو أرسل 'مواعيدي' لعرض مواعيدك.",
		"Please send the appointment number you want to cancel, or send 'appointments' to view your upcoming bookings.")
}

func noSlotsNextWeekBody(arabic bool) string {
	return pick(arabic,
		"عذراً، لا توجد مواعيد متاحة خلال الأسبوع القادم. يرجى التواصل مع العيادة.",
		"Sorry, no available slots in the next week. Please contact the clinic directly.")
}

func dateNotUnderstoodBody(arabic bool) string {
	return pick(arabic,
		"لم أفهم التاريخ. من فضلك اختر من القائمة أو أرسل التاريخ بالصيغة: يوم-شهر-سنة",
		"I didn't understand the date. Please choose from the list or type: DD-MM-YYYY")
}

func noSlotsThatDayBody(arabic bool) string {
	return pick(arabic,
		"لا توجد أوقات متاحة في هذا اليوم. اختر تاريخاً آخر:",
		"No slots available on that day. Please choose another date:")
}

func confirmSummaryBody(arabic bool, serviceName, doctorName, dateFormatted, timeStr string) string {
	lines := []string{pick(arabic, "📋 *تأكيد الموعد*", "📋 *Appointment Summary*"), ""}
	if serviceName != "" {
		lines = append(lines, pick(arabic, "🏥 الخدمة: ", "🏥 Service: ")+serviceName)
	}
	lines = append(lines,
		pick(arabic, "👨‍⚕️ الطبيب: ", "👨‍⚕️ Doctor: ")+doctorName,
		pick(arabic, "📅 التاريخ: ", "📅 Date: ")+dateFormatted,
		pick(arabic, "⏰ الوقت: ", "⏰ Time: ")+timeStr,
		"",
		pick(arabic, "هل تريد تأكيد الحجز؟", "Would you like to confirm?"))
	return strings.Join(lines, "\n")
}

func confirmButtons(arabic bool) (confirm, changeDate, cancelFlow string) {
	return pick(arabic, "✅ تأكيد", "✅ Confirm"),
		pick(arabic, "📅 تغيير التاريخ", "📅 Change Date"),
		pick(arabic, "❌ إلغاء", "❌ Cancel")
}

func quotaReachedBody(arabic bool) string {
	return pick(arabic,
		"عذراً، وصلت العيادة للحد الأقصى من الحجوزات هذا الشهر. يرجى التواصل مع العيادة مباشرة.",
		"Sorry, the clinic has reached its monthly booking limit. Please contact the clinic directly.")
}

func bookedBody(arabic bool, ref string) string {
	if arabic {
		return fmt.Sprintf("✅ تم تأكيد موعدك بنجاح!\n\nرقم الموعد: %s\nسيصلك تذكير قبل الموعد بـ 24 ساعة و ساعتين.\n\nشكراً لاختيارك عيادتنا 🏥", ref)
	}
	return fmt.Sprintf("✅ Your appointment is confirmed!\n\nRef: %s\nYou'll receive reminders 24h and 2h before your appointment.\n\nThank you for choosing our clinic 🏥", ref)
}

func rescheduledBody(arabic bool, ref, dateFormatted, timeStr string) string {
	if arabic {
		return fmt.Sprintf("✅ تم تعديل موعدك بنجاح!\n\nرقم الموعد: %s\n📅 الموعد الجديد: %s الساعة %s\nسيصلك تذكير قبل الموعد بـ 24 ساعة و ساعتين.", ref, dateFormatted, timeStr)
	}
	return fmt.Sprintf("✅ Your appointment has been rescheduled!\n\nRef: %s\n📅 New time: %s at %s\nYou'll receive reminders 24h and 2h before your appointment.", ref, dateFormatted, timeStr)
}

func abandonedBody(arabic bool) string {
	return pick(arabic,
		"تم إلغاء عملية الحجز. أرسل أي رسالة للعودة للقائمة.",
		"Booking cancelled. Send any message to return to the menu.")
}

func noUpcomingToCancelBody(arabic bool) string {
	return pick(arabic, "لا توجد مواعيد قادمة لإلغائها.", "You have no upcoming appointments to cancel.")
}

func noUpcomingToRescheduleBody(arabic bool) string {
	return pick(arabic, "لا توجد مواعيد قادمة لتعديلها.", "You have no upcoming appointments to reschedule.")
}

func noUpcomingBody(arabic bool) string {
	return pick(arabic,
		"لا توجد مواعيد قادمة. أرسل أي رسالة للعودة للقائمة.",
		"You have no upcoming appointments. Send any message to return to the menu.")
}

func appointmentNotFoundBody(arabic bool) string {
	return pick(arabic, "لم يتم العثور على الموعد.", "Appointment not found.")
}

func cancelledBody(arabic bool, doctorName, dateStr string) string {
	if arabic {
		return fmt.Sprintf("✅ تم إلغاء موعدك مع %s بتاريخ %s بنجاح.\n\nأرسل أي رسالة للعودة للقائمة.", doctorName, dateStr)
	}
	return fmt.Sprintf("✅ Your appointment with %s on %s has been cancelled.\n\nSend any message to return to the menu.", doctorName, dateStr)
}

func upcomingListBody(arabic bool, lines []string) string {
	header := pick(arabic, "📋 *مواعيدك القادمة*", "📋 *Your upcoming appointments*")
	return header + "\n\n" + strings.Join(lines, "\n")
}
