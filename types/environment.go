package types

// Environment is the step interface the control loop drives.
type Environment interface {
	// Reset called at the start of each episode
	Reset() State
	// Step applies one action and returns the resulting state
	Step(Action) State
}

// State of the grid that policies observe
type State interface {
	// Indexed by the Hash
	// Should be deterministic
	Hash() string
	// Actions possible from the state
	Actions() []Action
}

// An Action that a policy or a human operator can take
type Action interface {
	// Index of the action
	// Should be deterministic
	Hash() string
}
