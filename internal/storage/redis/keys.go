package redis

import (
	"fmt"

	"github.com/mcoot/crosswordduel/internal/model"
)

// Key prefix for all stored data
const keyPrefix = "cwduel"

// moveLogKey returns the Redis key for the LIST of a game's move records
func moveLogKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:moves:%s", keyPrefix, gameID)
}

// dictionaryKey returns the Redis key for the dictionary word set
func dictionaryKey() string {
	return fmt.Sprintf("%s:dictionary", keyPrefix)
}
