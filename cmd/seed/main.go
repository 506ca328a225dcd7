package main

import (
	"os"

	"github.com/partshub/internal/app"
	"github.com/partshub/internal/config"
	"github.com/partshub/internal/constants"
	"github.com/partshub/internal/logger"
	"github.com/partshub/internal/models"

	"golang.org/x/crypto/bcrypt"
)

const demoPassword = "password123"

type seedUser struct {
	FullName     string
	Email        string
	Phone        string
	Role         string
	BusinessName string
	Address      string
}

type seedPart struct {
	Name        string
	Description string
	SKU         string
	Category    string
	Price       int64
	Quantity    int
	Vehicles    []string
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := app.InitDatabase(cfg); err != nil {
		stdLog.Fatalf("Failed to prepare database: %v", err)
	}

	if err := models.InitDefaultAdmin(os.Getenv("PH_DEFAULT_ADMIN_EMAIL"), os.Getenv("PH_DEFAULT_ADMIN_PASSWORD")); err != nil {
		stdLog.Fatalf("Failed to create admin: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash demo password: %v", err)
	}

	users := []seedUser{
		{FullName: "Emeka Okafor", Email: "vendor@partshub.local", Phone: "08031234501", Role: constants.RoleVendor, BusinessName: "Ladipo Auto Spares", Address: "Ladipo Market, Mushin, Lagos"},
		{FullName: "Tunde Bakare", Email: "dispatcher@partshub.local", Phone: "08031234502", Role: constants.RoleDispatcher},
		{FullName: "Ngozi Adeyemi", Email: "client@partshub.local", Phone: "08031234503", Role: constants.RoleClient, Address: "12 Allen Avenue, Ikeja, Lagos"},
	}

	var vendor models.User
	for _, item := range users {
		var existing models.User
		if err := models.DB.Where("email = ?", item.Email).First(&existing).Error; err == nil {
			stdLog.Printf("User already exists: %s", item.Email)
			if item.Role == constants.RoleVendor {
				vendor = existing
			}
			continue
		}
		user := models.User{
			FullName:     item.FullName,
			Email:        item.Email,
			Phone:        item.Phone,
			PasswordHash: string(hash),
			Role:         item.Role,
			Address:      item.Address,
			BusinessName: item.BusinessName,
			IsActive:     true,
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Printf("Failed to create user %s: %v", item.Email, err)
			continue
		}
		stdLog.Printf("Created %s: %s", item.Role, item.Email)
		if item.Role == constants.RoleVendor {
			vendor = user
		}
	}
	if vendor.ID == 0 {
		stdLog.Fatalf("Vendor account missing, cannot seed catalog")
	}

	parts := []seedPart{
		{Name: "Brake Pad Set (Front)", Description: "Ceramic front brake pads", SKU: "BRK-PAD-001", Category: "Brakes", Price: 18500, Quantity: 40, Vehicles: []string{"Toyota Corolla 2008-2013", "Toyota Camry 2007-2011"}},
		{Name: "Oil Filter", Description: "Spin-on engine oil filter", SKU: "ENG-OF-014", Category: "Engine", Price: 3500, Quantity: 120, Vehicles: []string{"Honda Accord 2003-2007", "Honda Civic 2006-2011"}},
		{Name: "Spark Plug (Iridium)", Description: "Long-life iridium spark plug", SKU: "ENG-SP-220", Category: "Engine", Price: 4200, Quantity: 200, Vehicles: []string{"Toyota Corolla 2008-2013", "Lexus RX350 2010-2015"}},
		{Name: "Shock Absorber (Rear)", Description: "Gas-charged rear shock absorber", SKU: "SUS-SA-310", Category: "Suspension", Price: 27000, Quantity: 16, Vehicles: []string{"Toyota Sienna 2004-2010"}},
		{Name: "Alternator 12V 90A", Description: "Remanufactured alternator", SKU: "ELC-ALT-090", Category: "Electrical", Price: 65000, Quantity: 6, Vehicles: []string{"Honda Accord 2003-2007"}},
		{Name: "Headlamp Assembly (Left)", Description: "Halogen headlamp, left side", SKU: "LGT-HL-511", Category: "Lighting", Price: 42000, Quantity: 0, Vehicles: []string{"Toyota Camry 2007-2011"}},
	}

	for _, item := range parts {
		var existing models.Part
		if err := models.DB.Where("sku = ?", item.SKU).First(&existing).Error; err == nil {
			stdLog.Printf("Part already exists: %s", item.SKU)
			continue
		}
		part := models.Part{
			VendorID:           vendor.ID,
			VendorName:         vendor.DisplayName(),
			Name:               item.Name,
			Description:        item.Description,
			SKU:                item.SKU,
			Category:           item.Category,
			Price:              models.NewMoneyFromInt(item.Price),
			Quantity:           item.Quantity,
			CompatibleVehicles: models.StringArray(item.Vehicles),
			IsAvailable:        true,
		}
		if err := models.DB.Create(&part).Error; err != nil {
			stdLog.Printf("Failed to create part %s: %v", item.SKU, err)
			continue
		}
		stdLog.Printf("Created part: %s", item.SKU)
	}

	stdLog.Printf("Seed completed, demo accounts use password %q", demoPassword)
}
