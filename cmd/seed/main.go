package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"

	"leadcrm/internal/database"
	"leadcrm/internal/domain"
	"leadcrm/internal/domain/auth"
	"leadcrm/internal/domain/lead"
	"leadcrm/internal/repository"
)

var (
	countries    = []string{"Germany", "Kazakhstan", "United States", "Brazil", "Japan"}
	timezones    = []string{"Europe/Berlin", "Asia/Almaty", "America/New_York", "America/Sao_Paulo", "Asia/Tokyo"}
	incomeRanges = []string{"<30k", "30k-60k", "60k-100k", "100k+"}
	firstNames   = []string{"Jane", "John", "Asel", "Bekzat", "Maria", "Kenji", "Lucas", "Dina"}
	lastNames    = []string{"Doe", "Smith", "Nurlanova", "Tanaka", "Silva", "Meyer"}
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "crm.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migrate failed:", err)
	}

	// Cleanup old data (children first)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM lead_comments")
	db.Exec("DELETE FROM leads")
	db.Exec("DELETE FROM lead_imports")
	db.Exec("DELETE FROM users")

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	leads := lead.NewRepository(db)

	// ================== USERS ==================
	log.Println("Creating users...")

	managerHash, _ := auth.HashPassword("manager123")
	manager := &domain.User{
		Username:     "manager",
		Email:        "manager@crm.local",
		PasswordHash: managerHash,
		FirstName:    "Main",
		LastName:     "Manager",
		IsStaff:      true,
	}
	if err := users.Create(ctx, manager); err != nil {
		log.Fatal("create manager:", err)
	}
	log.Println("Staff created: manager / manager123")

	agents := make([]*domain.User, 0, 3)
	for i := 1; i <= 3; i++ {
		hash, _ := auth.HashPassword("agent123")
		agent := &domain.User{
			Username:     fmt.Sprintf("agent%d", i),
			Email:        fmt.Sprintf("agent%d@crm.local", i),
			PasswordHash: hash,
			FirstName:    fmt.Sprintf("Agent %d", i),
		}
		if err := users.Create(ctx, agent); err != nil {
			log.Fatal("create agent:", err)
		}
		agents = append(agents, agent)
	}
	log.Println("Agents created: agent1..agent3 / agent123")

	// ================== LEADS ==================
	log.Println("Creating leads...")
	for i := 0; i < 20; i++ {
		first := firstNames[rand.Intn(len(firstNames))]
		last := lastNames[rand.Intn(len(lastNames))]
		c := rand.Intn(len(countries))

		l := &lead.Lead{
			FullName:    first + " " + last,
			Email:       fmt.Sprintf("lead%02d@example.com", i+1),
			Phone:       fmt.Sprintf("+1 555 %03d %04d", rand.Intn(1000), rand.Intn(10000)),
			Country:     countries[c],
			Timezone:    timezones[c],
			IncomeRange: incomeRanges[rand.Intn(len(incomeRanges))],
		}

		var comments []lead.Comment
		if i%3 != 0 {
			agent := agents[i%len(agents)]
			l.AgentID = &agent.ID
			comments = append(comments, lead.Comment{
				AuthorID: &agent.ID,
				Role:     lead.RoleAgent,
				Content:  "First call done, follow up next week.",
			})
		}
		if i%5 == 0 {
			comments = append(comments, lead.Comment{
				AuthorID: &manager.ID,
				Role:     lead.RoleManager,
				Content:  "High priority.",
			})
		}

		if err := leads.Create(ctx, l, comments); err != nil {
			log.Fatal("create lead:", err)
		}
	}

	log.Println("Seed completed")
}
