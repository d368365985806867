package entity

// Entity is anything the archive can persist under a stable document id.
type Entity interface {
	Slug() string
}
