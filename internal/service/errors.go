package service

import "errors"

// Common service errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("resource not found")
)

// Room errors
var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
)

// Battle errors
var (
	ErrBattleDecided  = errors.New("battle already decided")
	ErrRoundResolving = errors.New("round is resolving")
	ErrNoActiveBattle = errors.New("no active battle")
)

// Character errors
var (
	ErrCharacterNotFound = errors.New("character not found")
)

// User errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
