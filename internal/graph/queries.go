package graph

// Cypher query constants for the symbol/relationship graph mirror
// (SPEC_FULL.md §2 "Graph Mirror (Neo4j)"). The universal model has no
// per-column lineage concept, so only the generic symbol/edge/file shapes
// from the teacher's schema are kept; the teacher's COLUMN_FLOW variants
// were dropped (see DESIGN.md).
const (
	// CreateConstraintSymbolID ensures Symbol(id) is unique and indexed (required for fast MERGE/MATCH).
	CreateConstraintSymbolID = `CREATE CONSTRAINT symbol_id IF NOT EXISTS FOR (s:Symbol) REQUIRE s.id IS UNIQUE`
	// CreateConstraintFileID ensures File(id) is unique and indexed (required for fast MERGE/MATCH).
	CreateConstraintFileID = `CREATE CONSTRAINT file_id IF NOT EXISTS FOR (f:File) REQUIRE f.id IS UNIQUE`

	// UpsertSymbolNode merges a symbol node by its project-scoped integer id.
	UpsertSymbolNode = `
UNWIND $symbols AS sym
MERGE (s:Symbol {id: sym.id, projectId: sym.projectId})
SET s.name = sym.name,
    s.qualifiedName = sym.qualifiedName,
    s.kind = sym.kind,
    s.language = sym.language,
    s.filePath = sym.filePath,
    s.startLine = sym.startLine,
    s.endLine = sym.endLine,
    s.isExported = sym.isExported
`

	// UpsertEdge merges a directed relationship between two symbols,
	// labeled by the universal model's closed RelationshipType set.
	UpsertEdge = `
UNWIND $edges AS edge
MATCH (src:Symbol {id: edge.fromId, projectId: edge.projectId})
MATCH (tgt:Symbol {id: edge.toId, projectId: edge.projectId})
MERGE (src)-[r:RELATES {type: edge.type}]->(tgt)
SET r.projectId = edge.projectId,
    r.confidence = edge.confidence
`

	// UpsertFileNode merges a file node keyed by (projectId, path).
	UpsertFileNode = `
UNWIND $files AS f
MERGE (file:File {path: f.path, projectId: f.projectId})
SET file.language = f.language
`

	// LinkSymbolToFile creates DEFINED_IN relationships between symbols and files.
	LinkSymbolToFile = `
UNWIND $symbols AS sym
MATCH (s:Symbol {id: sym.id, projectId: sym.projectId})
MATCH (f:File {path: sym.filePath, projectId: sym.projectId})
MERGE (s)-[:DEFINED_IN]->(f)
`

	// DeleteProjectNodes removes all nodes and relationships for a project,
	// used before a full re-sync (spec.md §6's range-delete contract mirrored
	// into the graph).
	DeleteProjectNodes = `
MATCH (n {projectId: $projectId})
DETACH DELETE n
`

	// LineageUpstream finds all upstream dependencies of a symbol.
	LineageUpstream = `
MATCH path = (upstream)-[:RELATES*1..%d]->(target:Symbol {id: $symbolId, projectId: $projectId})
RETURN path
`

	// LineageDownstream finds all downstream dependents of a symbol.
	LineageDownstream = `
MATCH path = (source:Symbol {id: $symbolId, projectId: $projectId})-[:RELATES*1..%d]->(downstream)
RETURN path
`

	// LineageBoth finds both upstream and downstream connections.
	LineageBoth = `
MATCH path = (upstream)-[:RELATES*1..%d]->(target:Symbol {id: $symbolId, projectId: $projectId})
RETURN path
UNION
MATCH path = (source:Symbol {id: $symbolId, projectId: $projectId})-[:RELATES*1..%d]->(downstream)
RETURN path
`
)
