package identity

import "lifestuff/internal/domain"

// State is where the chain is in its lifecycle.
type State int

const (
	LoggedOut State = iota
	Creating
	LoggedIn
	ChangingCredential
	SavingSession
)

func (s State) String() string {
	switch s {
	case Creating:
		return "creating"
	case LoggedIn:
		return "logged_in"
	case ChangingCredential:
		return "changing_credential"
	case SavingSession:
		return "saving_session"
	default:
		return "logged_out"
	}
}

// Existence is the outcome of GetUserInfo.
type Existence int

const (
	UserDoesNotExist Existence = iota
	UserExists
)

func (e Existence) String() string {
	if e == UserExists {
		return "user_exists"
	}
	return "user_does_not_exist"
}

// MasterData is what GetMasterDataMap recovers. Current is empty when only
// the previous snapshot could be decrypted.
type MasterData struct {
	Current   []byte
	Previous  []byte
	TmidName  domain.Identifier
	StmidName domain.Identifier
}
