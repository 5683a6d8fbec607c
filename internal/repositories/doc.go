// package repositories provides the persistence layer for sort-run history.
//
// Runs are recorded after a playlist build so users can review what a past
// invocation created. Deletes are soft; rows keep their deleted_at timestamp
// and drop out of queries.
package repositories
