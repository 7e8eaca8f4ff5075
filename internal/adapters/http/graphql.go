package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	statusType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SafetyStatus",
		Fields: graphql.Fields{
			"traveler_id":        &graphql.Field{Type: graphql.String},
			"current_status":     &graphql.Field{Type: graphql.String},
			"priority_level":     &graphql.Field{Type: graphql.String},
			"missed_checkins":    &graphql.Field{Type: graphql.Int},
			"assigned_responder": &graphql.Field{Type: graphql.String},
		},
	})

	alertType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SafetyAlert",
		Fields: graphql.Fields{
			"id":                 &graphql.Field{Type: graphql.String},
			"traveler_id":        &graphql.Field{Type: graphql.String},
			"alert_type":         &graphql.Field{Type: graphql.String},
			"severity":           &graphql.Field{Type: graphql.String},
			"status":             &graphql.Field{Type: graphql.String},
			"details":            &graphql.Field{Type: graphql.String},
			"coordinates":        &graphql.Field{Type: geoPointType},
			"assigned_responder": &graphql.Field{Type: graphql.String},
			"resolution_notes":   &graphql.Field{Type: graphql.String},
		},
	})

	responderType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Responder",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"contact":  &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
			"active":   &graphql.Field{Type: graphql.Boolean},
		},
	})

	matchType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ResponderMatch",
		Fields: graphql.Fields{
			"responder":       &graphql.Field{Type: responderType},
			"distance_meters": &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"travelerStatus": &graphql.Field{
				Type:        statusType,
				Description: "Current safety status of a traveler",
				Args: graphql.FieldConfigArgument{
					"travelerId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["travelerId"].(string)
					dash, err := deps.Safety.GetDashboard(p.Context, id)
					if err != nil {
						return nil, err
					}
					return dash.Status, nil
				},
			},
			"alerts": &graphql.Field{
				Type:        graphql.NewList(alertType),
				Description: "A traveler's alerts, newest first",
				Args: graphql.FieldConfigArgument{
					"travelerId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"sinceHours": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["travelerId"].(string)
					var since time.Time
					if hours := p.Args["sinceHours"].(int); hours > 0 {
						since = time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
					}
					return deps.Safety.ListAlerts(p.Context, id, since)
				},
			},
			"nearestResponder": &graphql.Field{
				Type:        matchType,
				Description: "Closest active responder to a point",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					return deps.Responders.Nearest(p.Context, domain.GeoPoint{Lat: lat, Lon: lon})
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
