package order

import (
	"fmt"
	"strings"
	"unicode"

	"fulfillment/internal/pkg/errs"
)

// Step is a stage of the fulfillment lifecycle.
//
// State transitions (computed by the backend, one stage per advance):
//
//	Pending -> WaitPickUp -> Verify -> Checkout -> PickedUp -> Delivered
//
// StepUnknown is the sentinel for a backend status that matches no stage.
// It is distinct from StepPending so an unmapped status is never mistaken
// for a freshly created order.
type Step int

const (
	// StepUnknown represents an unmapped or missing status.
	StepUnknown Step = iota

	// StepPending is the initial stage of every order.
	StepPending

	// StepWaitPickUp means a pickup has been scheduled.
	StepWaitPickUp

	// StepVerify means the goods are being verified and line items may be edited.
	StepVerify

	// StepCheckout means the verified price is awaiting payment.
	StepCheckout

	// StepPickedUp means the goods left the customer.
	StepPickedUp

	// StepDelivered is the final stage; no further transitions are possible.
	StepDelivered
)

// StepDefinition is one entry of the fixed step table.
type StepDefinition struct {
	Key   string
	Index int
}

// StepState is the rendering state of a step relative to the current one.
type StepState string

const (
	StepStateDone    StepState = "done"
	StepStateActive  StepState = "active"
	StepStatePending StepState = "pending"
)

// StepProgress pairs a step definition with its state for one order.
type StepProgress struct {
	StepDefinition
	State StepState
}

var orderedSteps = []Step{StepPending, StepWaitPickUp, StepVerify, StepCheckout, StepPickedUp, StepDelivered}

func getStepKeys() map[Step]string {
	return map[Step]string{
		StepPending:    "pending",
		StepWaitPickUp: "wait-pick-up",
		StepVerify:     "verify",
		StepCheckout:   "checkout",
		StepPickedUp:   "picked-up",
		StepDelivered:  "delivered",
	}
}

// getStepLookup maps normalized keys, including the spellings the backend
// uses, to steps.
func getStepLookup() map[string]Step {
	lookup := make(map[string]Step, len(orderedSteps)+3)
	for step, key := range getStepKeys() {
		lookup[NormalizeKey(key)] = step
	}
	lookup["new"] = StepPending
	lookup["pickup"] = StepPickedUp
	lookup["pickupdone"] = StepPickedUp
	return lookup
}

// NormalizeKey lower-cases raw and drops whitespace, underscores and hyphens,
// so "Wait Pick Up", "wait_pick_up" and "WAITPICKUP" compare equal.
func NormalizeKey(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToLower(raw) {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseStep maps a raw backend status to a step. Unmapped input yields StepUnknown.
func ParseStep(raw string) Step {
	if step, ok := getStepLookup()[NormalizeKey(raw)]; ok {
		return step
	}
	return StepUnknown
}

// Steps returns the fixed step table in lifecycle order.
func Steps() []StepDefinition {
	keys := getStepKeys()
	defs := make([]StepDefinition, len(orderedSteps))
	for i, step := range orderedSteps {
		defs[i] = StepDefinition{Key: keys[step], Index: i}
	}
	return defs
}

// StateOf returns done if stepIndex < currentIndex, active if equal, else pending.
func StateOf(stepIndex, currentIndex int) StepState {
	switch {
	case stepIndex < currentIndex:
		return StepStateDone
	case stepIndex == currentIndex:
		return StepStateActive
	default:
		return StepStatePending
	}
}

// Validate reports whether s is one of the six lifecycle steps.
func (s Step) Validate() error {
	if _, ok := getStepKeys()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("step", fmt.Errorf("%d is not a valid step", s))
	}
	return nil
}

// Key returns the step key, or "unknown" for the sentinel and invalid values.
func (s Step) Key() string {
	if key, ok := getStepKeys()[s]; ok {
		return key
	}
	return "unknown"
}

// String returns the step key, or "unknown" for StepUnknown.
func (s Step) String() string {
	return s.Key()
}

// Index returns the ordinal position in the step table, or -1 for StepUnknown.
func (s Step) Index() int {
	if s.Validate() != nil {
		return -1
	}
	return int(s) - 1
}

// IsTerminal reports whether no further transitions exist.
func (s Step) IsTerminal() bool {
	return s == StepDelivered
}

// IsPlanned reports whether the order is waiting for pickup.
func (s Step) IsPlanned() bool {
	return s == StepPending || s == StepWaitPickUp
}

// IsProcessing reports whether the order is between pickup scheduling and delivery.
func (s Step) IsProcessing() bool {
	return s == StepVerify || s == StepCheckout || s == StepPickedUp
}

// Next returns the stage that follows s.
//
// Returns an error for StepDelivered (terminal) and for StepUnknown,
// whose successor only the backend can decide.
func (s Step) Next() (Step, error) {
	if err := s.ValidateAdvance(); err != nil {
		return StepUnknown, err
	}
	if s == StepUnknown {
		return StepUnknown, errs.NewValueIsInvalidErrorWithCause(
			"step",
			fmt.Errorf("next step of %s is decided by the backend", s),
		)
	}
	return s + 1, nil
}

// ValidateAdvance checks whether an advance may be requested from s.
// Only the terminal step is refused; an unknown status is left to the backend.
func (s Step) ValidateAdvance() error {
	if s.IsTerminal() {
		return errs.NewValueIsInvalidErrorWithCause(
			"step",
			fmt.Errorf("%s is a final step", s),
		)
	}
	return nil
}

// Progress returns every step with its state relative to s.
// For StepUnknown all steps are pending.
func (s Step) Progress() []StepProgress {
	current := s.Index()
	defs := Steps()
	out := make([]StepProgress, len(defs))
	for i, def := range defs {
		out[i] = StepProgress{StepDefinition: def, State: StateOf(def.Index, current)}
	}
	return out
}
