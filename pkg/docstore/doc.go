// Package docstore provides a minimal collection-oriented document store:
// schemaless records keyed by an auto-assigned string identifier, with
// equality-filter lookups, field-level updates and removals.
//
// Three backends implement the same Collection interface:
//
//   - a file backend (Open) persisting each collection as a JSON file
//     under a data directory, the default for small deployments;
//   - a mongo backend (NewMongoCollection) over an existing
//     *mongo.Collection, connected via ConnectMongo;
//   - a redis backend (NewRedisCollection) storing documents as JSON
//     values, connected via ConnectRedis.
//
// The contract deliberately stays small: atomic single-record operations,
// no multi-record transactions, no secondary indexes. Filtered finds may
// scan the whole collection, which callers accept at this scale.
//
//	db, err := docstore.Open("./data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	users := db.Collection("users")
//
//	id, err := users.InsertOne(ctx, docstore.Document{"username": "alice"})
//	doc, err := users.FindOne(ctx, docstore.Document{"username": "alice"})
//
// Misses are reported as ErrNotFound; operations on a closed handle fail
// with ErrNotInitialized.
package docstore
