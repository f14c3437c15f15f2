package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tourbook/internal/config"
	"tourbook/internal/database"
	"tourbook/internal/domain"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM emergency_alerts")
	db.Exec("DELETE FROM itinerary_items")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM tour_departures")
	db.Exec("DELETE FROM tours")
	db.Exec("DELETE FROM users")

	// ================== USERS ==================
	log.Println("Creating users...")

	opHash, _ := bcrypt.GenerateFromPassword([]byte("operator123"), bcrypt.DefaultCost)
	operator := domain.User{
		Email:        "ops@tourbook.kz",
		PasswordHash: string(opHash),
		Role:         domain.RoleOperator,
		DisplayName:  "Оператор туров",
		Phone:        "+77010000001",
	}
	if err := db.Create(&operator).Error; err != nil {
		log.Fatal(err)
	}

	travellers := make([]domain.User, 0, 3)
	for i, email := range []string{"aidar@example.com", "meruert@example.com", "daniyar@example.com"} {
		hash, _ := bcrypt.GenerateFromPassword([]byte("traveller123"), bcrypt.DefaultCost)
		u := domain.User{
			Email:        email,
			PasswordHash: string(hash),
			Role:         domain.RoleTraveller,
			DisplayName:  []string{"Айдар", "Меруерт", "Данияр"}[i],
		}
		if err := db.Create(&u).Error; err != nil {
			log.Fatal(err)
		}
		travellers = append(travellers, u)
	}

	// ================== TOURS ==================
	log.Println("Creating tours...")

	now := time.Now().UTC()
	tours := []domain.Tour{
		{
			Title:       "Чарынский каньон",
			Description: "Однодневный тур к Чарынскому каньону с обедом.",
			Region:      "Алматинская область",
			UnitPrice:   18000,
			Status:      domain.TourPublished,
		},
		{
			Title:       "Кольсайские озёра",
			Description: "Двухдневный тур: Кольсай и Каинды, ночёвка в гостевом доме.",
			Region:      "Алматинская область",
			UnitPrice:   45000,
			Status:      domain.TourPublished,
		},
		{
			Title:       "Поющий бархан",
			Description: "Тур в нацпарк Алтын-Эмель.",
			Region:      "Алматинская область",
			UnitPrice:   25000,
			Status:      domain.TourDraft,
		},
	}
	for i := range tours {
		if err := db.Create(&tours[i]).Error; err != nil {
			log.Fatal(err)
		}
	}

	log.Println("Creating departures...")
	departures := []domain.TourDeparture{
		// running right now so realtime rooms have an audience
		{TourID: tours[0].ID, StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(8 * time.Hour), Capacity: 12},
		{TourID: tours[0].ID, StartTime: now.Add(72 * time.Hour), EndTime: now.Add(82 * time.Hour), Capacity: 12},
		{TourID: tours[1].ID, StartTime: now.Add(24 * time.Hour), EndTime: now.Add(72 * time.Hour), Capacity: 8},
		{TourID: tours[1].ID, StartTime: now.Add(7 * 24 * time.Hour), EndTime: now.Add(9 * 24 * time.Hour), Capacity: 8},
	}
	for i := range departures {
		departures[i].Active = departures[i].Running(now)
		if err := db.Create(&departures[i]).Error; err != nil {
			log.Fatal(err)
		}
	}

	// ================== BOOKINGS ==================
	log.Println("Creating bookings...")

	bookings := []domain.Booking{
		{
			UserID:       travellers[0].ID,
			TourID:       tours[0].ID,
			DepartureID:  departures[0].ID,
			Travellers:   2,
			TotalPrice:   36000,
			Status:       domain.BookingConfirmed,
			ContactName:  travellers[0].DisplayName,
			ContactEmail: travellers[0].Email,
			ContactPhone: "+77010000002",
		},
		{
			UserID:       travellers[1].ID,
			TourID:       tours[1].ID,
			DepartureID:  departures[2].ID,
			Travellers:   1,
			TotalPrice:   45000,
			Status:       domain.BookingPending,
			ContactName:  travellers[1].DisplayName,
			ContactEmail: travellers[1].Email,
			ContactPhone: "+77010000003",
		},
	}
	for i := range bookings {
		if err := db.Create(&bookings[i]).Error; err != nil {
			log.Fatal(err)
		}
		db.Model(&domain.TourDeparture{}).
			Where("id = ?", bookings[i].DepartureID).
			Update("booked", gorm.Expr("booked + ?", bookings[i].Travellers))
	}

	// ================== ITINERARY ==================
	log.Println("Creating itinerary...")

	items := []domain.ItineraryItem{
		{TourID: tours[0].ID, Day: 1, Title: "Выезд из Алматы", Body: "Сбор в 07:00 у Абая/Достык.", Location: "Алматы"},
		{TourID: tours[0].ID, Day: 1, Title: "Долина замков", Body: "Прогулка по каньону, обед.", Location: "Чарын"},
		{TourID: tours[1].ID, Day: 1, Title: "Озеро Кольсай-1", Body: "Трекинг вдоль озера.", Location: "Кольсай"},
		{TourID: tours[1].ID, Day: 2, Title: "Озеро Каинды", Body: "Затопленный лес.", Location: "Каинды"},
	}
	for i := range items {
		if err := db.Create(&items[i]).Error; err != nil {
			log.Fatal(err)
		}
	}

	log.Println("Seed complete.")
	log.Printf("operator: ops@tourbook.kz / operator123")
	log.Printf("travellers: aidar|meruert|daniyar@example.com / traveller123")
}
