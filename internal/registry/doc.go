// Package registry models the state film-distribution register and resolves
// scraped titles against it.
//
// The register (https://opendata.mkrf.ru/opendata/7705851331-register_movies/)
// is the authority for which movies may be shown; ingestion refuses to persist
// a showing whose movie cannot be uniquely matched here. The Store persists a
// local replica, and Match implements the fuzzy title reconciliation used by
// the ingestion engine.
package registry
