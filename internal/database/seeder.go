package database

import (
	"context"
	"log"

	"farm-coop-api-server/internal/auth"
	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"
)

const adminEmail = "admin@example.com"

// SeedAdmin creates the bootstrap admin account if no user has the admin
// email yet. The default password must be rotated on first login.
func SeedAdmin(st store.Store) error {
	existing, err := st.QueryEqual(context.Background(), "users", "email", adminEmail)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Println("Admin already exists. Seeding skipped.")
		return nil
	}

	log.Println("Admin not found. Seeding...")
	hashedPassword, err := auth.HashPassword("adminpassword")
	if err != nil {
		return err
	}

	admin := models.UserData{
		Email:     adminEmail,
		Firstname: "System",
		Lastname:  "Admin",
		Password:  hashedPassword,
		Role:      "admin",
	}

	uid := st.GenerateKey("users")
	if err := st.Write(context.Background(), "users/"+uid, admin); err != nil {
		return err
	}

	log.Println("Admin seeded successfully.")
	return nil
}
