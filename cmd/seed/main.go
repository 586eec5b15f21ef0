package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fieldjobs/internal/config"
	"fieldjobs/internal/database"
	"fieldjobs/internal/domain"
	"fieldjobs/internal/domain/auth"
	"fieldjobs/internal/logging"
)

type seedUser struct {
	email    string
	password string
	role     domain.UserRole
	name     string
	phone    string
}

var users = []seedUser{
	{"admin@fieldjobs.local", "admin1234", domain.RoleAdmin, "Administración", ""},
	{"carlos@fieldjobs.local", "montador123", domain.RoleInstaller, "Carlos Ruiz", "+34 600 111 222"},
	{"lucia@fieldjobs.local", "montador123", domain.RoleInstaller, "Lucía Martín", "+34 600 333 444"},
}

type seedJob struct {
	title, client, address string
	lat, lng               float64
	amount                 float64
	status                 domain.JobStatus
	reason                 string
}

var jobs = []seedJob{
	{"Instalación aire acondicionado", "Hotel Prado", "Paseo del Prado 12, Madrid", 40.4138, -3.6921, 850, domain.JobStatusPending, ""},
	{"Revisión caldera", "Familia Gómez", "Calle de Alcalá 200, Madrid", 40.4300, -3.6700, 120, domain.JobStatusPending, "Falta la foto del número de serie"},
	{"Cambio de termo", "Bar Central", "Gran Vía 30, Madrid", 40.4200, -3.7050, 340, domain.JobStatusEnRevision, ""},
	{"Montaje split doble", "Oficinas Norte", "Calle de Bravo Murillo 100, Madrid", 40.4500, -3.7030, 1200, domain.JobStatusApproved, ""},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("logging: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	installers := make([]domain.User, 0, len(users))
	for _, su := range users {
		u, err := upsertUser(db, su)
		if err != nil {
			log.Fatalf("seed user %s: %v", su.email, err)
		}
		log.WithFields(logrus.Fields{"email": su.email, "password": su.password, "role": su.role}).Info("user ready")
		if u.Role == domain.RoleInstaller {
			installers = append(installers, *u)
		}
	}

	if len(os.Args) > 1 && os.Args[1] == "--users-only" {
		return
	}

	for i, sj := range jobs {
		assignee := installers[i%len(installers)].ID
		j := domain.Job{
			Title:      sj.title,
			ClientName: sj.client,
			Address:    sj.address,
			Lat:        ptr(sj.lat),
			Lng:        ptr(sj.lng),
			Amount:     ptr(sj.amount),
			AssignedTo: &assignee,
			Status:     sj.status,
		}
		if sj.reason != "" {
			j.RejectionReason = &sj.reason
		}
		if err := db.Create(&j).Error; err != nil {
			log.Fatalf("seed job %q: %v", sj.title, err)
		}
	}
	log.WithField("jobs", len(jobs)).Info(fmt.Sprintf("seeded %d installers", len(installers)))
}

func upsertUser(db *gorm.DB, su seedUser) (*domain.User, error) {
	hash, err := auth.HashPassword(su.password)
	if err != nil {
		return nil, err
	}
	u := domain.User{
		Email:        su.email,
		PasswordHash: hash,
		Role:         su.role,
		FullName:     su.name,
		Phone:        su.phone,
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "role", "full_name", "phone", "updated_at"}),
	}).Create(&u).Error
	if err != nil {
		return nil, err
	}
	// On conflict the generated id is not the stored one.
	var stored domain.User
	if err := db.Where("email = ?", su.email).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func ptr[T any](v T) *T { return &v }
