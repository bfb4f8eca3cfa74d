package amqp

import (
	"encoding/json"
	"time"
)

// Ledger event actions.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionRestored = "restored"
)

// Ledger event entities.
const (
	EntityFund     = "fund"
	EntityExpense  = "expense"
	EntitySettings = "settings"
	EntityLedger   = "ledger"
)

// LedgerEvent describes one mutation of the ledger store. The audit worker
// consumes these and appends them to the journal; the payload carries only
// identifiers, never record contents.
type LedgerEvent struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	RecordID  string    `json:"recordId,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent stamps an event with the current time.
func NewLedgerEvent(entity, action, recordID, detail string) *LedgerEvent {
	return &LedgerEvent{
		Entity:    entity,
		Action:    action,
		RecordID:  recordID,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event from JSON bytes.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
