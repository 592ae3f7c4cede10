package db

import "fmt"

// GraphDefinition records which document collections an edge collection is
// allowed to connect. CouchDB has no native named-graph object, so this is
// purely an in-process declaration that the Index & Graph Builder (spec §4.8)
// records to document the data model; nothing checks edges against it.
type GraphDefinition struct {
	Name            string
	EdgeCollection  string
	FromCollections []string
	ToCollections   []string
}

// GraphRegistry is the process-wide set of declared graphs.
type GraphRegistry struct {
	graphs map[string]GraphDefinition
}

// NewGraphRegistry returns an empty registry.
func NewGraphRegistry() *GraphRegistry {
	return &GraphRegistry{graphs: make(map[string]GraphDefinition)}
}

// Define records a named graph. Calling Define again for the same name
// replaces the prior declaration.
func (g *GraphRegistry) Define(def GraphDefinition) {
	g.graphs[def.Name] = def
}

// Lookup returns the graph definition for name, if declared.
func (g *GraphRegistry) Lookup(name string) (GraphDefinition, bool) {
	def, ok := g.graphs[name]
	return def, ok
}

// EdgeDoc builds the CouchDB document for an edge between from and to,
// tagging it with the collection-qualified `<collection>/<key>` endpoint
// references spec §4.2 calls for, plus any extra fields the caller supplies
// (e.g. source_edge_id / source_edge_key for derived edges, spec §4.7).
func EdgeDoc(key, fromCollection, fromKey, toCollection, toKey string, extra map[string]interface{}) map[string]interface{} {
	doc := map[string]interface{}{
		"_id":   key,
		"_from": fmt.Sprintf("%s/%s", fromCollection, fromKey),
		"_to":   fmt.Sprintf("%s/%s", toCollection, toKey),
	}
	for k, v := range extra {
		doc[k] = v
	}
	return doc
}
