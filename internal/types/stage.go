package types

import "fmt"

// Stage is the phase of a hand, the TableRecord's discrete state variable.
type Stage uint8

const (
	StageWaiting Stage = iota
	StagePreFlop
	StageFlop
	StageTurn
	StageRiver
	StageShowdown
)

var stageNames = [...]string{
	StageWaiting:  "waiting",
	StagePreFlop:  "preflop",
	StageFlop:     "flop",
	StageTurn:     "turn",
	StageRiver:    "river",
	StageShowdown: "showdown",
}

func (s Stage) Valid() bool {
	return int(s) < len(stageNames)
}

func (s Stage) String() string {
	if !s.Valid() {
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
	return stageNames[s]
}

func (s Stage) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid stage %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(b []byte) error {
	parsed, err := ParseStage(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseStage(name string) (Stage, error) {
	for i, n := range stageNames {
		if n == name {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", name)
}

// Operation identifies a table operation. The numeric tags are stable.
type Operation uint8

const (
	OpInitialize     Operation = 0
	OpJoin           Operation = 1
	OpRequestShuffle Operation = 2
	OpDistribute     Operation = 3
	OpAdvanceStage   Operation = 4
	OpFulfillShuffle Operation = 5
)

var opNames = map[Operation]string{
	OpInitialize:     "initialize",
	OpJoin:           "join",
	OpRequestShuffle: "request_shuffle",
	OpDistribute:     "distribute",
	OpAdvanceStage:   "advance_stage",
	OpFulfillShuffle: "fulfill_shuffle",
}

func (op Operation) String() string {
	if n, ok := opNames[op]; ok {
		return n
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

type transition struct {
	from Stage
	op   Operation
}

// transitions is the complete table of legal stage changes. Initialize creates
// the record in StageWaiting and never applies to an existing record.
var transitions = map[transition]Stage{
	{StageWaiting, OpJoin}:           StageWaiting,
	{StageWaiting, OpRequestShuffle}: StageWaiting,
	{StageWaiting, OpFulfillShuffle}: StagePreFlop,
	{StagePreFlop, OpAdvanceStage}:   StageFlop,
	{StageFlop, OpAdvanceStage}:      StageTurn,
	{StageTurn, OpAdvanceStage}:      StageRiver,
	{StageRiver, OpAdvanceStage}:     StageShowdown,
	{StageShowdown, OpDistribute}:    StageWaiting,
}

// Allows reports whether op may run while the table is in stage s.
func (s Stage) Allows(op Operation) bool {
	_, ok := transitions[transition{s, op}]
	return ok
}

// Transition returns the stage reached by applying op in stage s.
func (s Stage) Transition(op Operation) (Stage, error) {
	next, ok := transitions[transition{s, op}]
	if !ok {
		return s, ErrWrongStage.Wrapf("%s not allowed in stage %s", op, s)
	}
	return next, nil
}
