package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gothamlabs/oracle/core/normalize"
	"github.com/gothamlabs/oracle/model"
)

// attributeTopics are answered from the entity's attribute bag rather than
// the relation graph.
var attributeTopics = map[model.RelationTopic]string{
	model.TopicWeapons:  "weapons",
	model.TopicDefenses: "defenses",
	model.TopicFeatures: "features",
}

// graphTopics map relation topics to the edge kind that answers them, and
// whether incoming edges count as well. Alliances and enmities are symmetric,
// memberships and appearances are not.
var graphTopics = map[model.RelationTopic]struct {
	kind     model.RelationKind
	incoming bool
}{
	model.TopicAllies:      {model.RelationKindAllyOf, true},
	model.TopicEnemies:     {model.RelationKindEnemyOf, true},
	model.TopicAffiliation: {model.RelationKindMemberOf, false},
	model.TopicAppearances: {model.RelationKindAppearsIn, false},
}

// answerRelation resolves a relation topic for an entity, from attributes or
// from the relation graph depending on the topic.
func (e *Engine) answerRelation(ctx context.Context, entity *model.Entity, topic model.RelationTopic, confidence float64) (*model.Response, error) {
	if key, ok := attributeTopics[topic]; ok {
		items := entity.AttributeList(key)
		if len(items) == 0 {
			return attributeAbsentResponse(entity, topic, confidence), nil
		}
		return listResponse(entity, topic, items, confidence), nil
	}

	spec, ok := graphTopics[topic]
	if !ok {
		return entityResponse(entity, confidence, model.IntentRelationQuery), nil
	}

	names, err := e.relatedNames(ctx, entity, spec.kind, spec.incoming)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return attributeAbsentResponse(entity, topic, confidence), nil
	}
	return listResponse(entity, topic, names, confidence), nil
}

// relatedNames collects the display names on the far end of an entity's edges
// of one kind. Incoming edges require a catalog lookup for the source name.
func (e *Engine) relatedNames(ctx context.Context, entity *model.Entity, kind model.RelationKind, incoming bool) ([]string, error) {
	edges, err := e.gateway.EdgesFor(ctx, entity.ID, kind)
	if err != nil {
		return nil, err
	}

	var names []string
	seen := map[string]struct{}{}
	add := func(name string) {
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok || name == "" {
			return
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}

	for _, edge := range edges {
		if edge.SourceID == entity.ID {
			add(edge.TargetName)
			continue
		}
		if !incoming {
			continue
		}
		source, err := e.gateway.LookupByID(ctx, edge.SourceID)
		if err != nil {
			return nil, err
		}
		add(source.Name)
	}

	return names, nil
}

// answerOwnership resolves operator relationships in the direction implied by
// the entity type: operators for a vehicle, vehicles for anyone else.
func (e *Engine) answerOwnership(ctx context.Context, entity *model.Entity, confidence float64) (*model.Response, error) {
	edges, err := e.gateway.EdgesFor(ctx, entity.ID, model.RelationKindOperates)
	if err != nil {
		return nil, err
	}

	if entity.Type == model.EntityTypeVehicle {
		return e.vehicleOperators(ctx, entity, edges, confidence)
	}
	return e.operatedVehicles(entity, edges, confidence)
}

// vehicleOperators answers "who drives X". The primary-role operator leads,
// then primary entities, then the rest.
func (e *Engine) vehicleOperators(ctx context.Context, vehicle *model.Entity, edges []*model.RelationEdge, confidence float64) (*model.Response, error) {
	type operator struct {
		entity *model.Entity
		role   string
	}

	var operators []operator
	for _, edge := range edges {
		if edge.TargetID == nil || *edge.TargetID != vehicle.ID {
			continue
		}
		source, err := e.gateway.LookupByID(ctx, edge.SourceID)
		if err != nil {
			return nil, err
		}
		operators = append(operators, operator{entity: source, role: edge.Role})
	}

	if len(operators) == 0 {
		return &model.Response{
			Text:            fmt.Sprintf("The catalog doesn't record who operates %s.", vehicle.Name),
			Confidence:      confidence,
			Intent:          model.IntentOwnership,
			SourceEntityIDs: []string{vehicle.ID.String()},
			ErrorKind:       model.ErrorAttributeAbsent,
		}, nil
	}

	sort.SliceStable(operators, func(i, j int) bool {
		if (operators[i].role == model.RolePrimary) != (operators[j].role == model.RolePrimary) {
			return operators[i].role == model.RolePrimary
		}
		return operators[i].entity.Primary && !operators[j].entity.Primary
	})

	text := fmt.Sprintf("%s is operated by %s.", vehicle.Name, operators[0].entity.Name)
	if len(operators) > 1 {
		var others []string
		for _, op := range operators[1:] {
			others = append(others, op.entity.Name)
		}
		text += fmt.Sprintf(" Also operated by %s.", strings.Join(others, ", "))
	}

	return &model.Response{
		Text:            text,
		Confidence:      confidence,
		Intent:          model.IntentOwnership,
		SourceEntityIDs: []string{vehicle.ID.String()},
	}, nil
}

// operatedVehicles answers "what does X drive". The primary-role vehicle
// leads the list.
func (e *Engine) operatedVehicles(entity *model.Entity, edges []*model.RelationEdge, confidence float64) (*model.Response, error) {
	type vehicle struct {
		name string
		role string
	}

	var vehicles []vehicle
	for _, edge := range edges {
		if edge.SourceID != entity.ID {
			continue
		}
		vehicles = append(vehicles, vehicle{name: edge.TargetName, role: edge.Role})
	}

	if len(vehicles) == 0 {
		return &model.Response{
			Text:            fmt.Sprintf("The catalog doesn't record any vehicle for %s.", entity.Name),
			Confidence:      confidence,
			Intent:          model.IntentOwnership,
			SourceEntityIDs: []string{entity.ID.String()},
			ErrorKind:       model.ErrorAttributeAbsent,
		}, nil
	}

	sort.SliceStable(vehicles, func(i, j int) bool {
		return vehicles[i].role == model.RolePrimary && vehicles[j].role != model.RolePrimary
	})

	text := fmt.Sprintf("%s operates the %s.", entity.Name, vehicles[0].name)
	if len(vehicles) > 1 {
		var others []string
		for _, v := range vehicles[1:] {
			others = append(others, v.name)
		}
		text += fmt.Sprintf(" Also: %s.", strings.Join(others, ", "))
	}

	return &model.Response{
		Text:            text,
		Confidence:      confidence,
		Intent:          model.IntentOwnership,
		SourceEntityIDs: []string{entity.ID.String()},
	}, nil
}

// answerComparison renders two entities side by side. Vehicles additionally
// show their attribute lists so counts can be compared at a glance.
func (e *Engine) answerComparison(a *model.Entity, b *model.Entity, confidence float64) *model.Response {
	var out strings.Builder
	fmt.Fprintf(&out, "Comparing %s and %s.\n", a.Name, b.Name)

	for _, entity := range []*model.Entity{a, b} {
		fmt.Fprintf(&out, "- %s (%s)", entity.Name, entity.Type)
		if summary := shortSummary(entity.Description); summary != "" {
			fmt.Fprintf(&out, ": %s", summary)
		}
		out.WriteString("\n")

		for _, topic := range []model.RelationTopic{model.TopicWeapons, model.TopicDefenses, model.TopicFeatures} {
			items := entity.AttributeList(attributeTopics[topic])
			if len(items) == 0 {
				continue
			}
			cleaned := make([]string, 0, len(items))
			for _, item := range items {
				cleaned = append(cleaned, normalize.Sanitize(item))
			}
			fmt.Fprintf(&out, "  %s: %s\n", topicLabel(topic), strings.Join(cleaned, ", "))
		}
	}

	return &model.Response{
		Text:            strings.TrimRight(out.String(), "\n"),
		Confidence:      confidence,
		Intent:          model.IntentComparison,
		SourceEntityIDs: []string{a.ID.String(), b.ID.String()},
	}
}
