package models

// Tipos de medio soportados en el catálogo.
const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

type RatingStats struct {
	Average     float64 `json:"average" bson:"average"`
	Count       int     `json:"count" bson:"count"`
	LastRatedAt string  `json:"lastRatedAt,omitempty" bson:"lastRatedAt,omitempty"`
}

// MovieDoc es el documento del catálogo (colección movies). El movieId es el
// id de TMDB y es estable entre rebuilds del modelo.
type MovieDoc struct {
	MovieID          int          `json:"movieId" bson:"movieId"`
	Title            string       `json:"title" bson:"title"`
	Overview         string       `json:"overview,omitempty" bson:"overview,omitempty"`
	VoteAverage      float64      `json:"voteAverage" bson:"voteAverage"`
	VoteCount        int          `json:"voteCount" bson:"voteCount"`
	Popularity       float64      `json:"popularity" bson:"popularity"`
	PosterPath       string       `json:"posterPath,omitempty" bson:"posterPath,omitempty"`
	BackdropPath     string       `json:"backdropPath,omitempty" bson:"backdropPath,omitempty"`
	MediaType        string       `json:"mediaType" bson:"mediaType"`
	ReleaseDate      string       `json:"releaseDate,omitempty" bson:"releaseDate,omitempty"`
	OriginalLanguage string       `json:"originalLanguage,omitempty" bson:"originalLanguage,omitempty"`
	GenreIDs         []int        `json:"genreIds,omitempty" bson:"genreIds,omitempty"`
	RatingStats      *RatingStats `json:"ratingStats,omitempty" bson:"ratingStats,omitempty"`
	CreatedAt        string       `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt        string       `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// RecMovie es lo que devolvemos al cliente como recomendación. Nunca expone
// el score interno, solo los datos de la película.
type RecMovie struct {
	MovieID     int     `json:"movieId" bson:"movieId"`
	Title       string  `json:"title" bson:"title"`
	Overview    string  `json:"overview,omitempty" bson:"overview,omitempty"`
	VoteAverage float64 `json:"voteAverage" bson:"voteAverage"`
	VoteCount   int     `json:"voteCount" bson:"voteCount"`
	Popularity  float64 `json:"popularity" bson:"popularity"`
	PosterPath  string  `json:"posterPath,omitempty" bson:"posterPath,omitempty"`
}

// ToRecMovie proyecta un MovieDoc a la forma que exponen las recomendaciones.
func (m *MovieDoc) ToRecMovie() RecMovie {
	return RecMovie{
		MovieID:     m.MovieID,
		Title:       m.Title,
		Overview:    m.Overview,
		VoteAverage: m.VoteAverage,
		VoteCount:   m.VoteCount,
		Popularity:  m.Popularity,
		PosterPath:  m.PosterPath,
	}
}

// Payload para crear una película a mano (endpoint admin).
type MovieCreateRequest struct {
	MovieID     int     `json:"movieId"` // si es 0 se asigna el siguiente libre
	Title       string  `json:"title"`   // obligatorio
	Overview    string  `json:"overview,omitempty"`
	VoteAverage float64 `json:"voteAverage,omitempty"`
	VoteCount   int     `json:"voteCount,omitempty"`
	Popularity  float64 `json:"popularity,omitempty"`
	PosterPath  string  `json:"posterPath,omitempty"`
	MediaType   string  `json:"mediaType,omitempty"` // movie|tv, default movie
	ReleaseDate string  `json:"releaseDate,omitempty"`
}
