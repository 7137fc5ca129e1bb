// Command seed loads a development tenant with doctors, services, and
// weekly schedules so the bot can be exercised locally end to end.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	tenantID  = "11111111-1111-1111-1111-111111111111"
	drSalemID = "22222222-2222-2222-2222-222222222222"
	drNoraID  = "33333333-3333-3333-3333-333333333333"
	checkupID = "44444444-4444-4444-4444-444444444444"
	dentalID  = "55555555-5555-5555-5555-555555555555"
)

func main() {
	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	phoneNumberID := strings.TrimSpace(os.Getenv("SEED_PHONE_NUMBER_ID"))
	if phoneNumberID == "" {
		phoneNumberID = "dev-phone-number"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, `
		INSERT INTO tenants (id, phone_number_id, name, locale, timezone, subscription_tier, trial_started_at, owner_phone)
		VALUES ($1, $2, 'عيادة الشفاء', 'AR', 'Asia/Riyadh', 'GROWTH', now(), '+966500000001')
		ON CONFLICT (id) DO NOTHING`,
		tenantID, phoneNumberID); err != nil {
		log.Fatalf("seed tenant: %v", err)
	}

	doctors := []struct{ id, nameAR, nameEN, specialty string }{
		{drSalemID, "د. سالم العتيبي", "Dr. Salem Alotaibi", "General Medicine"},
		{drNoraID, "د. نورة القحطاني", "Dr. Nora Alqahtani", "Dentistry"},
	}
	for _, d := range doctors {
		if _, err := pool.Exec(ctx, `
			INSERT INTO doctors (id, tenant_id, name_ar, name_en, specialty)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING`,
			d.id, tenantID, d.nameAR, d.nameEN, d.specialty); err != nil {
			log.Fatalf("seed doctor %s: %v", d.nameEN, err)
		}
	}

	services := []struct {
		id, nameAR, nameEN string
		duration           int
		price              float64
	}{
		{checkupID, "كشف عام", "General Checkup", 30, 150},
		{dentalID, "تنظيف أسنان", "Dental Cleaning", 45, 250},
	}
	for _, s := range services {
		if _, err := pool.Exec(ctx, `
			INSERT INTO services (id, tenant_id, name_ar, name_en, duration_minutes, price)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING`,
			s.id, tenantID, s.nameAR, s.nameEN, s.duration, s.price); err != nil {
			log.Fatalf("seed service %s: %v", s.nameEN, err)
		}
	}

	links := [][2]string{
		{drSalemID, checkupID},
		{drNoraID, checkupID},
		{drNoraID, dentalID},
	}
	for _, l := range links {
		if _, err := pool.Exec(ctx, `
			INSERT INTO doctor_services (doctor_id, service_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			l[0], l[1]); err != nil {
			log.Fatalf("link doctor service: %v", err)
		}
	}

	// Sunday through Thursday, with a midday break.
	for _, doctorID := range []string{drSalemID, drNoraID} {
		for day := 0; day <= 4; day++ {
			if _, err := pool.Exec(ctx, `
				INSERT INTO schedules (id, doctor_id, day_of_week, start_time, end_time, break_start, break_end)
				VALUES (gen_random_uuid(), $1, $2, '09:00', '17:00', '12:00', '13:00')
				ON CONFLICT (doctor_id, day_of_week) DO NOTHING`,
				doctorID, day); err != nil {
				log.Fatalf("seed schedule: %v", err)
			}
		}
	}

	fmt.Printf("seeded tenant %s (phone_number_id=%s) with %d doctors, %d services\n",
		tenantID, phoneNumberID, len(doctors), len(services))
}
