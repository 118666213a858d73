package combat

import "encoding/json"

type EventType string

const (
	EventMove   EventType = "move"
	EventAttack EventType = "attack"
	EventStatus EventType = "status"
)

// Event is one entry of the battle log. Exactly one of the payload pointers
// is set, matching Type.
type Event struct {
	Round  int          `json:"t"`
	Type   EventType    `json:"type"`
	Move   *MoveEvent   `json:"move,omitempty"`
	Attack *AttackEvent `json:"attack,omitempty"`
	Status *StatusEvent `json:"status,omitempty"`
}

type MoveEvent struct {
	StackID int    `json:"unit_id"`
	Name    string `json:"unit_name"`
	Side    Side   `json:"side"`
	From    Cell   `json:"from"`
	To      Cell   `json:"to"`
}

type AttackEvent struct {
	AttackerID int            `json:"attacker_id"`
	Attacker   string         `json:"attacker"`
	Side       Side           `json:"attacker_side"`
	Crit       bool           `json:"crit"`
	Targets    []TargetResult `json:"targets"`
}

type TargetResult struct {
	DefenderID int     `json:"defender_id"`
	Defender   string  `json:"defender"`
	Damage     float64 `json:"dmg"`
	Killed     bool    `json:"killed"`
	Dodge      bool    `json:"dodge"`
	Crit       bool    `json:"crit"`
	Remaining  float64 `json:"last_unit_hp"`
}

type StatusEvent struct {
	AttackerAlive int `json:"attacker_alive"`
	DefenderAlive int `json:"defender_alive"`
}

// Placement is the setup snapshot of one stack.
type Placement struct {
	ID     int     `json:"id"`
	Name   string  `json:"unit_name"`
	Health float64 `json:"hp"`
	Pos    *Cell   `json:"pos"`
	Range  int     `json:"range"`
}

// Outcome is the result of one simulation. Winner is empty on a draw.
type Outcome struct {
	Winner            Side                 `json:"winner,omitempty"`
	Rounds            int                  `json:"rounds"`
	Events            []Event              `json:"log"`
	AttackerRemaining int                  `json:"attacker_remaining"`
	DefenderRemaining int                  `json:"defender_remaining"`
	InitialPositions  map[Side][]Placement `json:"initial_positions"`
}

func (o Outcome) Draw() bool { return o.Winner == "" }

func MarshalPretty(v any) []byte {
	b, _ := json.MarshalIndent(v, "", "  ")
	return b
}
