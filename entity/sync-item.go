package entity

import (
	"encoding/json"
	"fmt"
)

// SyncItem is a keyed record in a named map of the call-state store.
type SyncItem struct {
	Map      string          `json:"map"`
	Key      string          `json:"key"`
	Data     json.RawMessage `json:"data"`
	Revision uint64          `json:"revision,omitempty"`
}

func (i *SyncItem) Decode(v any) error {
	if len(i.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(i.Data, v); err != nil {
		return fmt.Errorf("decode %s/%s: %w", i.Map, i.Key, err)
	}
	return nil
}
