package driver

// IndexQueries use Memgraph's index syntax.
var IndexQueries = []string{
	"CREATE INDEX ON :Opportunity(id);",
	"CREATE INDEX ON :Opportunity(source);",
}

const (
	// LoadOpportunitiesQuery is the default query of a graph record source.
	// Every returned column becomes a table column; $source holds the tag of
	// the dataset being loaded.
	LoadOpportunitiesQuery = `
		MATCH (o:Opportunity)
		WHERE o.source = $source
		RETURN o.id AS id, o.name AS name, o.description AS description
		ORDER BY id
	`

	SaveOpportunityQuery = `
		MERGE (o:Opportunity {id: $id, source: $source})
		SET o.name = $name,
			o.description = $description
		RETURN o.id AS id
	`

	DeleteOpportunitiesQuery = `
		MATCH (o:Opportunity)
		WHERE o.source = $source
		DETACH DELETE o
	`
)
