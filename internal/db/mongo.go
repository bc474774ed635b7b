package db

import (
	"context"
	"log"
	"time"

	"movieranker/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var mongoDB *mongo.Database

// InitMongo conecta y deja la base lista para los repositorios. Sin Mongo no
// hay catálogo ni ratings, así que un fallo acá es fatal.
func InitMongo(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		log.Fatalf("[mongo] error conectando a %s: %v", cfg.MongoURI, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("[mongo] ping a %s falló: %v", cfg.MongoURI, err)
	}

	mongoDB = client.Database(cfg.MongoDB)
	log.Printf("[mongo] conectado, DB=%s", cfg.MongoDB)
}

func DB() *mongo.Database {
	return mongoDB
}
