package commands

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
)

// CacheKey identifies a ranking by its inputs. today is part of the key
// because urgency depends on it.
func CacheKey(tasks []priority.Task, strategy string, today priority.Date) (string, error) {
	payload, err := json.Marshal(struct {
		Strategy string          `json:"strategy"`
		Today    priority.Date   `json:"today"`
		Tasks    []priority.Task `json:"tasks"`
	}{strategy, today, tasks})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return "taskrank:analysis:" + hex.EncodeToString(sum[:]), nil
}
