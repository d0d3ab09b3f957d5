package catalog

import "github.com/spachava753/procreg/internal/models"

var builtinEntries = []models.CatalogEntry{
	{Name: "Annoy", Category: models.CategoryVector, Description: "Approximate Nearest Neighbors", LaunchRef: "vector_stores.annoy"},
	{Name: "HNSW", Category: models.CategoryVector, Description: "Hierarchical Navigable Small World", LaunchRef: "vector_stores.hnsw"},
	{Name: "LSH", Category: models.CategoryVector, Description: "Locality-Sensitive Hashing", LaunchRef: "vector_stores.lsh"},
	{Name: "PQ", Category: models.CategoryVector, Description: "Product Quantization", LaunchRef: "vector_stores.pq"},

	{Name: "JanusGraph", Category: models.CategoryGraph, Description: "Distributed Graph Database", LaunchRef: "graph_stores.janusgraph"},
	{Name: "GraphQL", Category: models.CategoryGraph, Description: "GraphQL Query Layer", LaunchRef: "graph_stores.graphql"},

	{Name: "Redis", Category: models.CategoryKeyValue, Description: "In-Memory Data Store", LaunchRef: "key_value_stores.redis"},
	{Name: "LevelDB", Category: models.CategoryKeyValue, Description: "Key-Value Store", LaunchRef: "key_value_stores.leveldb"},

	{Name: "TimescaleDB", Category: models.CategoryStatistical, Description: "Time-Series Database", LaunchRef: "statistical_stores.timescaledb"},
	{Name: "InfluxDB", Category: models.CategoryStatistical, Description: "Time-Series Data Platform", LaunchRef: "statistical_stores.influxdb"},

	{Name: "Elasticsearch", Category: models.CategoryIndex, Description: "Search Engine", LaunchRef: "index_stores.elasticsearch"},
	{Name: "Meilisearch", Category: models.CategoryIndex, Description: "Search API", LaunchRef: "index_stores.meilisearch"},

	{Name: "Arweave", Category: models.CategoryBlockchain, Description: "Permanent Storage", LaunchRef: "blockchain_stores.arweave"},
	{Name: "IPFS", Category: models.CategoryBlockchain, Description: "Distributed File System", LaunchRef: "blockchain_stores.ipfs"},
}

// Default returns the built-in catalog of database processes.
func Default() *Catalog {
	c, err := New(builtinEntries)
	if err != nil {
		panic("catalog: invalid built-in entries: " + err.Error())
	}
	return c
}
