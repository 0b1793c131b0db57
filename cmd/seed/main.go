package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"gorm.io/gorm"

	"ai-bizchat-be/internal/bootstrap"
	"ai-bizchat-be/internal/config"
	"ai-bizchat-be/internal/model"
	"ai-bizchat-be/internal/repository/pgvecstore"
	"ai-bizchat-be/pkg/database"
	"ai-bizchat-be/pkg/embedding"
)

// knowledgeEntry is one record of the knowledge seed file.
type knowledgeEntry struct {
	Document string            `json:"document"`
	Metadata map[string]string `json:"metadata"`
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		log.Fatalf("Failed to enable pgvector extension: %v", err)
	}
	if err := db.AutoMigrate(&model.KnowledgeDocument{}); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	var embedder embedding.Provider
	switch cfg.Ai.EmbeddingProvider {
	case "openai":
		embedder = embedding.NewOpenAIProvider(cfg.Ai.EmbeddingAPIKey, cfg.Ai.EmbeddingBaseURL, cfg.Ai.EmbeddingModel)
	default:
		embedder = embedding.NewOllamaProvider(cfg.Ai.EmbeddingBaseURL, cfg.Ai.EmbeddingModel)
	}

	seedKnowledge(ctx, db, embedder, cfg.Chat.KnowledgePath)
	seedIntents(ctx, db, embedder, cfg.Chat.IntentsPath)

	log.Println("Seeding complete")
}

func seedKnowledge(ctx context.Context, db *gorm.DB, embedder embedding.Provider, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read knowledge file: %v", err)
	}
	var entries []knowledgeEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Fatalf("Failed to parse knowledge file: %v", err)
	}

	store := pgvecstore.New(db, embedder, model.CollectionKnowledge)
	if err := store.Clear(ctx); err != nil {
		log.Fatalf("Failed to clear knowledge collection: %v", err)
	}

	for _, e := range entries {
		if err := store.Add(ctx, e.Document, e.Metadata); err != nil {
			log.Fatalf("Failed to add knowledge document: %v", err)
		}
	}
	log.Printf("Seeded %d knowledge documents from %s", len(entries), path)
}

// seedIntents stores every trigger phrase as its own exemplar document so the
// semantic matcher can resolve paraphrases back to the intent name.
func seedIntents(ctx context.Context, db *gorm.DB, embedder embedding.Provider, path string) {
	intents, err := bootstrap.LoadIntents(path)
	if err != nil {
		log.Fatalf("Failed to load intents: %v", err)
	}

	store := pgvecstore.New(db, embedder, model.CollectionIntents)
	if err := store.Clear(ctx); err != nil {
		log.Fatalf("Failed to clear intents collection: %v", err)
	}

	count := 0
	for _, in := range intents {
		for _, trigger := range in.Triggers {
			metadata := map[string]string{"intent": in.Name}
			if in.Language != "" {
				metadata["language"] = in.Language
			}
			if err := store.Add(ctx, trigger, metadata); err != nil {
				log.Fatalf("Failed to add intent exemplar: %v", err)
			}
			count++
		}
	}
	log.Printf("Seeded %d intent exemplars from %s", count, path)
}
