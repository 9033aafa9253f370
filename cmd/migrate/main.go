package main

import (
	"log"

	"notes-intelligence-be/internal/config"
	"notes-intelligence-be/internal/model"
	"notes-intelligence-be/pkg/database"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions...")
	for _, sql := range []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	} {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}
	if err := database.EnsureVectorExtension(db); err != nil {
		log.Fatal("Error: pgvector extension is required:", err)
	}

	log.Println("Step 2: Running AutoMigrate...")
	if err := db.AutoMigrate(
		&model.Note{},
		&model.NoteEmbedding{},
		&model.StyleProfile{},
	); err != nil {
		log.Fatal("Error: AutoMigrate failed:", err)
	}

	log.Println("Step 3: Creating vector index...")
	// HNSW over cosine distance, the operator used by semantic search.
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_note_embeddings_vector
		ON note_embeddings USING hnsw (embedding_value vector_cosine_ops);`).Error; err != nil {
		log.Printf("Warn: Failed to create vector index: %v", err)
	}

	log.Println("Migration completed.")
}
