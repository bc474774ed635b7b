package models

import "time"

// Recommendation guarda el historial de recomendaciones servidas (colección
// recommendations). Items no incluye scores, igual que la respuesta HTTP.
type Recommendation struct {
	ID        string         `bson:"_id,omitempty" json:"id"`
	UserID    int            `bson:"userId"        json:"userId"`
	Algo      string         `bson:"algo"          json:"algo"` // content-tfidf
	Params    map[string]any `bson:"params"        json:"params"`
	Tiers     []TierInfo     `bson:"tiers"         json:"tiers"`
	Items     []RecMovie     `bson:"items"         json:"items"`
	CreatedAt time.Time      `bson:"createdAt"     json:"createdAt"`
}

// TierInfo indica cuántos ítems aportó cada nivel de la cascada.
type TierInfo struct {
	Tier  string `bson:"tier"  json:"tier"` // personalized|popular|external
	Count int    `bson:"count" json:"count"`
}

// ModelStatus es la respuesta de /admin/model/status.
type ModelStatus struct {
	Available      bool   `json:"available"`
	Movies         int    `json:"movies"`
	VocabularySize int    `json:"vocabularySize"`
	BuiltAt        string `json:"builtAt,omitempty"`
}

// RebuildResult es la respuesta de /admin/model/rebuild.
type RebuildResult struct {
	Movies         int    `json:"movies"`
	VocabularySize int    `json:"vocabularySize"`
	ElapsedMS      int64  `json:"elapsedMs"`
	BuiltAt        string `json:"builtAt"`
}

// SeedPopularResult es la respuesta de /admin/model/seed-popular.
type SeedPopularResult struct {
	Added    int  `json:"added"`
	Rebuilt  bool `json:"rebuilt"`
	Discover int  `json:"discover"`
	Searched int  `json:"searched"`
}
