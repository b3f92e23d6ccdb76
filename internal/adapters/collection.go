package adapters

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/hybriddb/hybriddb/internal/dberr"
	"github.com/hybriddb/hybriddb/internal/storage/rowengine"
)

// Collection is a schemaless document façade over a RowEngine,
// assigning a uuid "_id" to any document that omits one.
type Collection struct {
	mu     sync.Mutex
	name   string
	engine rowengine.RowEngine
}

// NewCollection creates a document façade over engine for container
// name, and ensures an _id index exists.
func NewCollection(name string, engine rowengine.RowEngine) (*Collection, error) {
	c := &Collection{name: name, engine: engine}
	if err := engine.CreateIndex(name, "_id", 2); err != nil && !dberr.Is(err, dberr.ErrUnsupported.Code) {
		return nil, err
	}
	return c, nil
}

// InsertOne stores a single document, assigning "_id" if absent.
func (c *Collection) InsertOne(document rowengine.Record) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insertOneLocked(document)
}

func (c *Collection) insertOneLocked(document rowengine.Record) (string, error) {
	id, ok := document["_id"].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		document["_id"] = id
	}
	if _, err := c.engine.Insert(c.name, document); err != nil {
		return "", err
	}
	return id, nil
}

// InsertMany stores every document in documents, returning the
// assigned "_id" of each in order.
func (c *Collection) InsertMany(documents []rowengine.Record) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(documents))
	for _, doc := range documents {
		id, err := c.insertOneLocked(doc)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Find returns every document matching query, or every document when
// query is nil.
func (c *Collection) Find(query Where) ([]rowengine.Record, error) {
	docs, err := c.engine.Scan(c.name)
	if err != nil {
		return nil, err
	}
	if query == nil {
		return docs, nil
	}

	var out []rowengine.Record
	for _, doc := range docs {
		if matches(doc, query) {
			out = append(out, doc)
		}
	}
	return out, nil
}

// FindOne returns the first document matching query, or
// dberr.ErrRecordNotFound if none match.
func (c *Collection) FindOne(query Where) (rowengine.Record, error) {
	docs, err := c.Find(query)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, dberr.ErrRecordNotFound
	}
	return docs[0], nil
}

// Update is the set of MongoDB-style update operators applied by
// UpdateOne/UpdateMany: $set merges fields, $unset removes them, $inc
// adds to a numeric field (treating a missing field as zero).
type Update map[string]rowengine.Record

func applyUpdate(document rowengine.Record, update Update) {
	if set, ok := update["$set"]; ok {
		for field, value := range set {
			document[field] = value
		}
	}
	if unset, ok := update["$unset"]; ok {
		for field := range unset {
			delete(document, field)
		}
	}
	if inc, ok := update["$inc"]; ok {
		for field, delta := range inc {
			current, _ := toFloat(document[field])
			addend, _ := toFloat(delta)
			document[field] = current + addend
		}
	}
}

// UpdateOne applies update to the first document matching query.
func (c *Collection) UpdateOne(query Where, update Update) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	docs, err := c.engine.Scan(c.name)
	if err != nil {
		return false, err
	}
	for _, doc := range docs {
		if !matches(doc, query) {
			continue
		}
		applyUpdate(doc, update)
		if _, err := c.engine.Update(c.name, doc["_id"], doc); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// UpdateMany applies update to every document matching query.
func (c *Collection) UpdateMany(query Where, update Update) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	docs, err := c.engine.Scan(c.name)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, doc := range docs {
		if !matches(doc, query) {
			continue
		}
		applyUpdate(doc, update)
		if _, err := c.engine.Update(c.name, doc["_id"], doc); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// DeleteOne removes the first document matching query.
func (c *Collection) DeleteOne(query Where) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	docs, err := c.engine.Scan(c.name)
	if err != nil {
		return false, err
	}
	for _, doc := range docs {
		if !matches(doc, query) {
			continue
		}
		if err := c.engine.Delete(c.name, doc["_id"]); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// DeleteMany removes every document matching query.
func (c *Collection) DeleteMany(query Where) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	docs, err := c.engine.Scan(c.name)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, doc := range docs {
		if !matches(doc, query) {
			continue
		}
		if err := c.engine.Delete(c.name, doc["_id"]); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// CountDocuments returns the number of documents matching query, or
// the total document count when query is nil.
func (c *Collection) CountDocuments(query Where) (int, error) {
	docs, err := c.Find(query)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// CreateIndex creates a secondary index on field.
func (c *Collection) CreateIndex(field string) error {
	return c.engine.CreateIndex(c.name, field, 2)
}

// Stage is a single aggregation pipeline step: one of $match, $project,
// $limit or $sort.
type Stage map[string]any

// Aggregate runs a simplified aggregation pipeline over the full
// collection, applying each stage's operator in sequence.
func (c *Collection) Aggregate(pipeline []Stage) ([]rowengine.Record, error) {
	results, err := c.Find(nil)
	if err != nil {
		return nil, err
	}

	for _, stage := range pipeline {
		results = applyStage(results, stage)
	}
	return results, nil
}

func applyStage(results []rowengine.Record, stage Stage) []rowengine.Record {
	if match, ok := stage["$match"]; ok {
		where, _ := match.(Where)
		filtered := make([]rowengine.Record, 0, len(results))
		for _, doc := range results {
			if matches(doc, where) {
				filtered = append(filtered, doc)
			}
		}
		return filtered
	}
	if project, ok := stage["$project"].(map[string]bool); ok {
		projected := make([]rowengine.Record, len(results))
		for i, doc := range results {
			out := make(rowengine.Record, len(project))
			for field := range project {
				out[field] = doc[field]
			}
			projected[i] = out
		}
		return projected
	}
	if limit, ok := stage["$limit"].(int); ok {
		if limit < len(results) {
			return results[:limit]
		}
		return results
	}
	if sortSpec, ok := stage["$sort"].(map[string]int); ok {
		return sortResults(results, sortSpec)
	}
	return results
}

func sortResults(results []rowengine.Record, sortSpec map[string]int) []rowengine.Record {
	var field string
	var direction int
	for f, d := range sortSpec {
		field, direction = f, d
		break
	}
	sorted := make([]rowengine.Record, len(results))
	copy(sorted, results)
	descending := direction < 0
	sort.SliceStable(sorted, func(i, j int) bool {
		if descending {
			return less(sorted[j][field], sorted[i][field])
		}
		return less(sorted[i][field], sorted[j][field])
	})
	return sorted
}
