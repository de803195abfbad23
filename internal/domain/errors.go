package domain

import "errors"

// Domain errors
var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrNotHost            = errors.New("only host can perform this action")
	ErrInvalidPhase       = errors.New("invalid action for current phase")
	ErrInvalidTransition  = errors.New("invalid phase transition")
	ErrNameTaken          = errors.New("name already taken")
	ErrEmptyName          = errors.New("name cannot be empty")
	ErrBanned             = errors.New("you are banned from this lobby")
	ErrWrongPassword      = errors.New("incorrect password")
	ErrLobbyFull          = errors.New("lobby is full")
	ErrAvatarTaken        = errors.New("avatar already taken")
	ErrInvalidAvatar      = errors.New("invalid avatar")
	ErrAlreadySubmitted   = errors.New("already submitted this round")
	ErrEmptyText          = errors.New("text cannot be empty")
	ErrAnswerTooLong      = errors.New("answer too long")
	ErrInvalidSource      = errors.New("invalid submission source")
	ErrInvalidGuess       = errors.New("invalid guess")
	ErrSelfVote           = errors.New("cannot vote on your own submission")
	ErrVotesLocked        = errors.New("votes already locked")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrUnknownTheme       = errors.New("unknown theme")
	ErrUnknownEmote       = errors.New("unknown or locked emote")
	ErrTargetIsHost       = errors.New("cannot target the host")
	ErrHostIdentity       = errors.New("persistent id belongs to the host")
	ErrInvalidSettings    = errors.New("invalid settings")
)
