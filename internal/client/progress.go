package client

// Action names the operation a progress report belongs to.
type Action int

const (
	ActionCreateUser Action = iota
	ActionLogIn
	ActionChangeKeyword
	ActionChangePin
	ActionChangePassword
)

var actionNames = [...]string{
	ActionCreateUser:     "create_user",
	ActionLogIn:          "log_in",
	ActionChangeKeyword:  "change_keyword",
	ActionChangePin:      "change_pin",
	ActionChangePassword: "change_password",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

// ProgressCode names a phase within an Action.
type ProgressCode int

const (
	InitialiseProcess ProgressCode = iota
	CreatingUserCredentials
	JoiningNetwork
	InitialisingClientComponents
	CreatingVault
	StartingVault
	VerifyingMount
	VerifyingUnmount
	StoringUserCredentials
	RetrievingUserCredentials
	ConfirmingUserInput
)

var progressNames = [...]string{
	InitialiseProcess:            "initialise_process",
	CreatingUserCredentials:      "creating_user_credentials",
	JoiningNetwork:               "joining_network",
	InitialisingClientComponents: "initialising_client_components",
	CreatingVault:                "creating_vault",
	StartingVault:                "starting_vault",
	VerifyingMount:               "verifying_mount",
	VerifyingUnmount:             "verifying_unmount",
	StoringUserCredentials:       "storing_user_credentials",
	RetrievingUserCredentials:    "retrieving_user_credentials",
	ConfirmingUserInput:          "confirming_user_input",
}

func (p ProgressCode) String() string {
	if p < 0 || int(p) >= len(progressNames) {
		return "unknown"
	}
	return progressNames[p]
}

// Progress is called at every phase transition.
type Progress func(Action, ProgressCode)
