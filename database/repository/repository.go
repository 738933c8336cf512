package repository

import (
	"ayurbook/database/repository/localstore"
)

// Re-export the local store interface and constructors.
type LocalStore = localstore.Store

var (
	NewMemoryStore = localstore.NewMemoryStore
	NewRedisStore  = localstore.NewRedisStore
)
