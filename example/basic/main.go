package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gothamlabs/oracle"
	"github.com/gothamlabs/oracle/helper"
	"github.com/gothamlabs/oracle/model"
)

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Name:     "testdb",
		User:     "postgres",
		Password: "postgres",
		Schema:   "public",
	}

	o, err := oracle.NewOracle(dbConfig, model.DefaultEngineConfig())
	if err != nil {
		log.Fatalf("Failed to create oracle: %v", err)
	}
	defer o.Close()

	// Seed a small catalog
	batman := &model.Entity{
		Name:        "Batman",
		Type:        model.EntityTypePerson,
		Primary:     true,
		Aliases:     []string{"The Dark Knight", "Bruce Wayne", "Caped Crusader"},
		Description: "Gotham's vigilante protector and the city's most feared detective.",
	}
	joker := &model.Entity{
		Name:        "Joker",
		Type:        model.EntityTypePerson,
		Primary:     true,
		Aliases:     []string{"The Clown Prince of Crime"},
		Description: "Batman's archenemy, a homicidal clown with a flair for theatrics.",
	}
	batmobile := &model.Entity{
		Name:        "Batmobile",
		Type:        model.EntityTypeVehicle,
		Primary:     true,
		Description: "Batman's armored pursuit car.",
		Attributes: model.Metadata{
			"weapons":  []string{"Machine guns", "Rocket launcher"},
			"defenses": []string{"Armor plating", "Smoke screen"},
			"features": []string{"Afterburner", "Remote control"},
		},
	}

	for _, entity := range []*model.Entity{batman, joker, batmobile} {
		if err := o.Entities.InsertEntity(entity); err != nil {
			log.Fatalf("Failed to insert entity %q: %v", entity.Name, err)
		}
	}

	edges := []*model.RelationEdge{
		{SourceID: batman.ID, TargetID: &batmobile.ID, TargetName: "Batmobile", Kind: model.RelationKindOperates, Role: model.RolePrimary},
		{SourceID: joker.ID, TargetID: &batman.ID, TargetName: "Batman", Kind: model.RelationKindEnemyOf},
	}
	for _, edge := range edges {
		if err := o.Edges.InsertEdge(edge); err != nil {
			log.Fatalf("Failed to insert edge to %q: %v", edge.TargetName, err)
		}
	}

	// Run a short conversation in one session
	ctx := context.Background()
	sessionID := o.NewSession()

	conversation := []string{
		"Who is the Joker?",
		"who does he fight",
		"what weapons are on the batmobile?",
		"who drives it",
		"who is superman",
	}

	for _, query := range conversation {
		response := o.HandleQuery(ctx, sessionID, query)
		fmt.Printf("> %s\n%s\n\n", query, response.Text)
	}

	stats, err := o.Stats()
	if err != nil {
		log.Fatalf("Failed to collect stats: %v", err)
	}
	fmt.Printf("Catalog entities: %d, live sessions: %d\n", stats.Entities, stats.Sessions)
}
