// Command seed imports a catalog file into the database. The file holds
// entities and name-referenced relation edges; edges whose target is not a
// catalog entity are stored with the free-text name only.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/gothamlabs/oracle"
	"github.com/gothamlabs/oracle/helper"
	"github.com/gothamlabs/oracle/model"
)

type seedEdge struct {
	Source string             `json:"source"`
	Target string             `json:"target"`
	Kind   model.RelationKind `json:"kind"`
	Role   string             `json:"role,omitempty"`
}

type seedFile struct {
	Entities []*model.Entity `json:"entities"`
	Edges    []seedEdge      `json:"edges"`
}

func main() {
	file := flag.String("file", "catalog.json", "path to the catalog file")
	flag.Parse()

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read catalog file: %v", err)
	}

	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.Fatalf("Failed to parse catalog file: %v", err)
	}

	config, err := helper.NewDatabaseConfiguration()
	if err != nil {
		log.Fatalf("Failed to load database configuration: %v", err)
	}

	o, err := oracle.NewOracle(config, model.DefaultEngineConfig())
	if err != nil {
		log.Fatalf("Failed to create oracle: %v", err)
	}
	defer o.Close()

	for _, entity := range seed.Entities {
		if err := o.Entities.InsertEntity(entity); err != nil {
			log.Fatalf("Failed to insert entity %q: %v", entity.Name, err)
		}
	}
	log.Printf("Inserted %d entities", len(seed.Entities))

	inserted := 0
	for _, edge := range seed.Edges {
		source, err := o.Entities.SelectEntityByName(edge.Source, nil)
		if err != nil {
			log.Fatalf("Failed to resolve edge source %q: %v", edge.Source, err)
		}

		relation := &model.RelationEdge{
			SourceID:   source.ID,
			TargetName: edge.Target,
			Kind:       edge.Kind,
			Role:       edge.Role,
		}

		// Targets that are catalog entities get their id, others stay
		// free-text.
		if target, err := o.Entities.SelectEntityByName(edge.Target, nil); err == nil {
			relation.TargetID = &target.ID
			relation.TargetName = target.Name
		}

		if err := o.Edges.InsertEdge(relation); err != nil {
			log.Fatalf("Failed to insert edge %q -> %q: %v", edge.Source, edge.Target, err)
		}
		inserted++
	}
	log.Printf("Inserted %d edges", inserted)
}
