// Package model holds the lobby domain types: Player and Room, and the
// invariants that govern room membership and ownership.
package model

import "github.com/phuhao00/minigames-server/server/internal/session"

// Player is the in-memory record for one connected session. AccountID is
// a stand-in identity minted at connect time — there is no account
// system behind it, since authentication sits outside this server's
// scope.
type Player struct {
	SessionID session.ID
	AccountID string
	Score     int64
}

// NewPlayer builds a Player for a freshly connected session.
func NewPlayer(sessionID session.ID, accountID string) *Player {
	return &Player{SessionID: sessionID, AccountID: accountID}
}

// AddScore adjusts the player's score by delta, which may be negative.
func (p *Player) AddScore(delta int64) {
	p.Score += delta
}
