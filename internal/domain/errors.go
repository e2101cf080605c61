package domain

import "errors"

// Domain errors
var (
	ErrLobbyNotFound    = errors.New("lobby not found")
	ErrLobbyFull        = errors.New("lobby is full")
	ErrBlankName        = errors.New("name cannot be blank")
	ErrNameTooLong      = errors.New("name is too long")
	ErrNameTaken        = errors.New("name already taken")
	ErrNotInLobby       = errors.New("player is not in this lobby")
	ErrNotHost          = errors.New("only the host can perform this action")
	ErrAlreadyStarted   = errors.New("game already started")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrNotReady         = errors.New("players are not all ready")
	ErrInvalidPhase     = errors.New("invalid action for current phase")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrSpotTaken        = errors.New("spot already claimed")
	ErrSpotOutOfRange   = errors.New("spot id out of range")
	ErrIneligibleVoter  = errors.New("player cannot vote in this matchup")
	ErrInvalidChoice    = errors.New("vote must pick one of the matchup players")
	ErrRoundNotActive   = errors.New("round is not active")
	ErrUnknownRound     = errors.New("unknown round number")
	ErrNoPrompt         = errors.New("no prompt at that index")
)
