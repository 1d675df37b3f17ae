package graph

import (
	"context"

	apperrors "github.com/dabster108/GraphDB-Neo4j/backend/pkg/errors"
)

// ============================================================================
// Ad-hoc Read Queries (ask layer)
// ============================================================================

// RunReadQuery executes a caller-supplied Cypher query in a read session and
// returns the rows as generic maps. Used only by the ask endpoint, which
// guards the query against write clauses before it ever reaches here.
func (r *Repository) RunReadQuery(ctx context.Context, cypher string) ([]map[string]interface{}, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, nil)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed(cypher, err)
	}

	var rows []map[string]interface{}
	for result.Next(ctx) {
		record := result.Record()
		row := make(map[string]interface{}, len(record.Keys))
		for i, key := range record.Keys {
			row[key] = record.Values[i]
		}
		rows = append(rows, row)
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed(cypher, err)
	}
	return rows, nil
}
