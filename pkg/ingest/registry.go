package ingest

import (
	"database/sql"

	"github.com/auctionbase/auctionbase/pkg/db"
)

// Registry assigns dense, 1-based surrogate ids to natural keys in
// first-seen order. Registration is append-only and idempotent within
// a run.
type Registry struct {
	ids  map[string]int
	keys []string
}

func NewRegistry() *Registry {
	return &Registry{ids: map[string]int{}}
}

// GetOrCreate returns the surrogate id for the given key, assigning
// the next id on first sight.
func (r *Registry) GetOrCreate(key string) int {
	if id, ok := r.ids[key]; ok {
		return id
	}
	id := len(r.ids) + 1
	r.ids[key] = id
	r.keys = append(r.keys, key)
	return id
}

func (r *Registry) Contains(key string) bool {
	_, ok := r.ids[key]
	return ok
}

func (r *Registry) Len() int {
	return len(r.keys)
}

// Keys returns the registered keys in first-seen order. Key i has
// surrogate id i+1.
func (r *Registry) Keys() []string {
	return r.keys
}

// LocationRegistry assigns surrogate ids to distinct location strings.
// The optional country association is captured once, at creation time;
// a location seen again with a different (or no) country keeps its
// first-seen association.
type LocationRegistry struct {
	ids  map[string]int
	rows []db.Location
}

func NewLocationRegistry() *LocationRegistry {
	return &LocationRegistry{ids: map[string]int{}}
}

func (r *LocationRegistry) GetOrCreate(name string, countryId sql.NullInt64) int {
	if id, ok := r.ids[name]; ok {
		return id
	}
	id := len(r.ids) + 1
	r.ids[name] = id
	r.rows = append(r.rows, db.Location{Id: id, Name: name, CountryId: countryId})
	return id
}

func (r *LocationRegistry) Contains(name string) bool {
	_, ok := r.ids[name]
	return ok
}

func (r *LocationRegistry) Len() int {
	return len(r.rows)
}

// Rows returns the location rows in id order.
func (r *LocationRegistry) Rows() []db.Location {
	return r.rows
}

// UserRegistry deduplicates users by their natural UserID. The first
// occurrence fixes rating and location permanently; later occurrences
// of the same id are ignored even when their declared rating or
// location differ.
type UserRegistry struct {
	ids  map[string]struct{}
	rows []db.User
}

func NewUserRegistry() *UserRegistry {
	return &UserRegistry{ids: map[string]struct{}{}}
}

// GetOrCreate registers the user on first sight and returns its id.
func (r *UserRegistry) GetOrCreate(user db.User) string {
	if _, ok := r.ids[user.Id]; ok {
		return user.Id
	}
	r.ids[user.Id] = struct{}{}
	r.rows = append(r.rows, user)
	return user.Id
}

func (r *UserRegistry) Contains(id string) bool {
	_, ok := r.ids[id]
	return ok
}

func (r *UserRegistry) Len() int {
	return len(r.rows)
}

// Rows returns the user rows in first-seen order.
func (r *UserRegistry) Rows() []db.User {
	return r.rows
}
