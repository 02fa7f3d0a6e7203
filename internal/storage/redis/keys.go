package redis

import (
	"fmt"

	"github.com/mcoot/edugames/internal/model"
)

// Key prefix for all edugames data
const keyPrefix = "edugames"

// userKey returns the Redis key holding a User document (JSON)
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// emailIndexKey returns the Redis key for the email -> user_id index.
// Claimed with SETNX, which is what makes emails unique.
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

// usersIndexKey returns the Redis key for the SET of all user keys
func usersIndexKey() string {
	return fmt.Sprintf("%s:idx:users", keyPrefix)
}

