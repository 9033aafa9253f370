package main

import (
	"context"
	"flag"
	"log"

	"notes-intelligence-be/internal/config"
	"notes-intelligence-be/internal/dto"
	"notes-intelligence-be/internal/pkg/logger"
	"notes-intelligence-be/internal/repository/unitofwork"
	"notes-intelligence-be/internal/service"
	"notes-intelligence-be/pkg/database"
	"notes-intelligence-be/pkg/style"
)

func main() {
	file := flag.String("file", "", "YAML or JSON profile to store (default: all-null profile)")
	flag.Parse()

	cfg := config.Load()
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	profile := style.DefaultProfile()
	if *file != "" {
		if profile, err = style.LoadProfile(*file); err != nil {
			log.Fatal(err)
		}
	}

	svc := service.NewStyleProfileService(unitofwork.NewRepositoryFactory(db), nil, nil, logger.NewNopLogger())
	res, err := svc.Replace(context.Background(), &dto.ReplaceStyleProfileRequest{Profile: profile})
	if err != nil {
		log.Fatal("Error: Failed to seed style profile:", err)
	}

	log.Printf("Seeded style profile with %d sections", len(res.Profile))
}
