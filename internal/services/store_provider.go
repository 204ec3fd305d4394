package services

import (
	"fms/internal/models"
	"fms/internal/scoring"
)

// NewDocumentStore builds the document store with one group per configured rank.
func NewDocumentStore(ranks *scoring.RankSet) *models.DocumentStore {
	return models.NewStore(ranks.Names())
}
