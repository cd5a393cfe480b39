// Package store defines the persistence interfaces used by the backend.
//
// Every method takes a db.Handler so callers decide whether it runs inside
// a transaction.
package store

// Store is an interface for managing users, organizations, opportunities,
// student records and settings.
type Store interface {
	SettingStore
	UserStore
	SchoolStore
	OrgStore
	EditionStore
	ActivityStore
	VolunteeringStore
	EmbeddingStore
}
