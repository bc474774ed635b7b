package models

// RatingDoc es lo que está en Mongo (colección ratings).
type RatingDoc struct {
	UserID    int     `json:"userId" bson:"userId"`
	MovieID   int     `json:"movieId" bson:"movieId"`
	Rating    float64 `json:"rating" bson:"rating"`
	Timestamp int64   `json:"timestamp" bson:"timestamp"`
}

// LikedMovie es un rating unido con el título del catálogo. El join es por
// movieId; el título solo se usa para resolver la fila en el modelo.
type LikedMovie struct {
	MovieID int     `json:"movieId"`
	Title   string  `json:"title"`
	Rating  float64 `json:"rating"`
}
