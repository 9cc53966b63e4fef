package neo4j

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/qiwang999/service-topo-agent/executor"
)

// fallbackSchema describes the service topology model. It is used when the
// database cannot be reached for introspection so that prompt construction
// still has something to anchor on.
const fallbackSchema = `Node properties are the following:
Service {name: STRING, version: STRING, status: STRING},
Instance {id: STRING, ip_address: STRING, status: STRING},
Region {name: STRING},
Namespace {name: STRING}

The relationships are the following:
(:Instance)-[:INSTANCE_OF]->(:Service),
(:Service)-[:DEPENDS_ON]->(:Service),
(:Service)-[:LOCATED_IN]->(:Region),
(:Service)-[:PART_OF]->(:Namespace)`

type neo4jExecutor struct {
	options executor.Options
	driver  neo4j.DriverWithContext
}

func (e *neo4jExecutor) Schema(ctx context.Context) (string, error) {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: e.options.Database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	props, err := e.collect(ctx, session, "CALL db.schema.nodeTypeProperties() YIELD nodeLabels, propertyName, propertyTypes RETURN nodeLabels, propertyName, propertyTypes")
	if err != nil {
		slog.WarnContext(ctx, "schema introspection failed, using fallback schema", "error", err)
		return fallbackSchema, nil
	}

	rels, err := e.collect(ctx, session, "CALL db.relationshipTypes() YIELD relationshipType RETURN relationshipType")
	if err != nil {
		slog.WarnContext(ctx, "schema introspection failed, using fallback schema", "error", err)
		return fallbackSchema, nil
	}

	var sb strings.Builder
	sb.WriteString("Node properties are the following:\n")
	for _, rec := range props {
		sb.WriteString(fmt.Sprintf("%v.%v: %v\n", rec["nodeLabels"], rec["propertyName"], rec["propertyTypes"]))
	}
	sb.WriteString("\nThe relationship types are the following:\n")
	for _, rec := range rels {
		sb.WriteString(fmt.Sprintf("%v\n", rec["relationshipType"]))
	}

	return sb.String(), nil
}

func (e *neo4jExecutor) Query(ctx context.Context, cypher string) ([]map[string]any, error) {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: e.options.Database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	return e.collect(ctx, session, cypher)
}

func (e *neo4jExecutor) collect(ctx context.Context, session neo4j.SessionWithContext, cypher string) ([]map[string]any, error) {
	result, err := session.Run(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}

	var records []map[string]any
	for result.Next(ctx) {
		if result.Err() != nil {
			return nil, result.Err()
		}
		records = append(records, result.Record().AsMap())
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func NewExecutor(opts ...executor.Option) executor.Executor {
	options := executor.NewOptions(opts...)

	e := &neo4jExecutor{
		options: options,
	}

	auth := neo4j.NoAuth()
	if len(options.Username) > 0 {
		auth = neo4j.BasicAuth(options.Username, options.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(options.Location, auth)
	if err != nil {
		detail := "failed to connect with neo4j executor"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	e.driver = driver

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		slog.WarnContext(ctx, "neo4j is unreachable at startup, queries will fail until it recovers", "error", err)
	}

	return e
}
