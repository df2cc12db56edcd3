package domain

import "errors"

var (
	// ErrEmptyPool is returned when the category filter leaves no questions to play.
	ErrEmptyPool = errors.New("no questions for the selected category")
	// ErrMalformedUpload indicates uploaded question data could not be parsed at all.
	ErrMalformedUpload = errors.New("malformed question upload")
	// ErrNoValidQuestions indicates an upload parsed but every row was dropped.
	ErrNoValidQuestions = errors.New("no valid questions found")
	// ErrStorageWrite is returned when a leaderboard entry could not be persisted.
	ErrStorageWrite = errors.New("leaderboard write failed")
	// ErrNotReady is returned when a run is started before it was set up.
	ErrNotReady = errors.New("quiz run not set up")
	// ErrInvalidTransition indicates an action that the current run state does not allow.
	ErrInvalidTransition = errors.New("invalid quiz state transition")
	// ErrBankReloaded indicates the question bank changed under an active run.
	ErrBankReloaded = errors.New("question bank was reloaded")
)
