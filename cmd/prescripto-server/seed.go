package main

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prescripto/prescripto/internal/domain/consultation"
	"github.com/prescripto/prescripto/internal/domain/order"
	"github.com/prescripto/prescripto/internal/domain/pharmacy"
)

// seed writes a small connected dataset: approved pharmacies, appointments
// with pending consultations, and pending orders tied to both. Meant for
// development databases only.
func seed(ctx context.Context, pool *pgxpool.Pool, perPharmacy int) error {
	pharmacyRepo := pharmacy.NewRepoPG(pool)
	consultRepo := consultation.NewRepoPG(pool)
	orderRepo := order.NewRepoPG(pool)

	faker := gofakeit.New(0)

	for i := 0; i < 3; i++ {
		approved := i < 2
		now := time.Now().UTC()
		ph := &pharmacy.Pharmacy{
			Name:          faker.Company() + " Pharmacy",
			Email:         faker.Email(),
			OwnerName:     faker.Name(),
			Phone:         faker.Phone(),
			LicenseNumber: fmt.Sprintf("DL-%d-%s", faker.Number(1000, 9999), faker.LetterN(2)),
			IsApproved:    approved,
			IsActive:      approved,
		}
		if approved {
			ph.ApprovedAt = &now
		}
		if err := pharmacyRepo.Create(ctx, ph); err != nil {
			return fmt.Errorf("seed pharmacy: %w", err)
		}

		doctorID := uuid.New()
		for j := 0; j < perPharmacy; j++ {
			patientID := uuid.New()

			appt := &consultation.Appointment{
				PatientID: patientID,
				DoctorID:  doctorID,
				SlotDate:  faker.DateRange(now, now.AddDate(0, 1, 0)),
				SlotTime:  fmt.Sprintf("%02d:00", faker.Number(9, 17)),
				Amount:    float64(faker.Number(300, 1500)),
				Paid:      faker.Bool(),
			}
			if err := consultRepo.Create(ctx, appt); err != nil {
				return fmt.Errorf("seed appointment: %w", err)
			}

			if !approved {
				continue
			}
			o := &order.Order{
				OrderNumber:    fmt.Sprintf("ORD-%d", faker.Number(100000, 999999)),
				PrescriptionID: uuid.New(),
				AppointmentID:  appt.ID,
				PatientID:      patientID,
				PharmacyID:     ph.ID,
				TotalAmount:    float64(faker.Number(100, 2000)),
				PaymentStatus:  "paid",
			}
			if err := orderRepo.Create(ctx, o); err != nil {
				return fmt.Errorf("seed order: %w", err)
			}
		}
	}

	fmt.Println("Seed data created.")
	return nil
}
