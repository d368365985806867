package entity

// Account identifies a ledger party. SigningKey is an opaque credential the
// ledger client's authorizer understands; nothing in this repository inspects
// or derives it.
type Account struct {
	Address    string `json:"address"`
	SigningKey string `json:"-"`
}
