package bootstrap

import (
	"encoding/json"
	"fmt"
	"os"

	"ai-bizchat-be/pkg/chat/intent"
)

// LoadIntents reads the intents configuration file: trigger phrases, canned
// responses and the default flag per intent. The same file seeds the intents
// collection in the vector store.
func LoadIntents(path string) ([]intent.Intent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read intents file: %w", err)
	}

	var intents []intent.Intent
	if err := json.Unmarshal(data, &intents); err != nil {
		return nil, fmt.Errorf("parse intents file: %w", err)
	}
	if len(intents) == 0 {
		return nil, fmt.Errorf("intents file %s is empty", path)
	}
	return intents, nil
}
