package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ActionKind identifies a pending multi-step conversational flow.
type ActionKind string

const (
	ActionNone         ActionKind = ""
	ActionRequestName  ActionKind = "new.requestName"
	ActionRequestDate  ActionKind = "new.requestDate"
	ActionAcceptInvite ActionKind = "acceptinvite"
	ActionInventory    ActionKind = "inventory"
)

// CurrentAction is a user's single pending conversational action. The
// zero value means nothing is pending. It is the only conversational
// memory the bot keeps, persisted on the user row as a JSON blob and
// encoded/decoded only here, at the storage boundary.
type CurrentAction struct {
	Kind ActionKind
	// Name carries the pending product name while Kind == ActionRequestDate.
	Name string
}

// IsNone reports whether no action is pending.
func (a CurrentAction) IsNone() bool {
	return a.Kind == ActionNone
}

type actionJSON struct {
	Action ActionKind `json:"action"`
	Name   string     `json:"name,omitempty"`
}

// Value implements driver.Valuer. A pending-nothing action is stored as
// the JSON literal null, the same encoding rows carry before any flow
// has ever touched them.
func (a CurrentAction) Value() (driver.Value, error) {
	if a.IsNone() {
		return "null", nil
	}
	raw, err := json.Marshal(actionJSON{Action: a.Kind, Name: a.Name})
	if err != nil {
		return nil, fmt.Errorf("failed to encode current action: %w", err)
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (a *CurrentAction) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = CurrentAction{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan current action from %T", src)
	}

	if len(raw) == 0 || string(raw) == "null" {
		*a = CurrentAction{}
		return nil
	}

	var decoded actionJSON
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("failed to decode current action: %w", err)
	}
	*a = CurrentAction{Kind: decoded.Action, Name: decoded.Name}
	return nil
}
