package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Collection values. One table holds both the knowledge base documents and
// the intent exemplars; searches never cross collections.
const (
	CollectionKnowledge = "knowledge"
	CollectionIntents   = "intents"
)

type KnowledgeDocument struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Collection string          `gorm:"type:varchar(32);not null;index"`
	Document   string          `gorm:"type:text"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text dimensions
	Intent     string          `gorm:"type:varchar(64);index"`
	Language   string          `gorm:"type:varchar(8);index"`
	Category   string          `gorm:"type:varchar(64);index"`
	Metadata   datatypes.JSON  `gorm:"type:jsonb"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime"`
}

func (KnowledgeDocument) TableName() string {
	return "knowledge_documents"
}
