package store

import "time"

// KernelInfo is the persisted form of a registered kernel. Def holds the
// KernelDef in the binary wire format.
type KernelInfo struct {
	ID           string    `json:"id"`
	NodeName     string    `json:"node_name"`
	Def          []byte    `json:"def"`
	RegisteredAt time.Time `json:"registered_at"`
}
