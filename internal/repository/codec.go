package repository

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/highscore-board/internal/domain"
)

// Decode parses a serialized collection. An empty or whitespace-only document
// is an empty collection.
func Decode(doc []byte) ([]domain.Player, error) {
	if len(bytes.TrimSpace(doc)) == 0 {
		return []domain.Player{}, nil
	}
	var players []domain.Player
	if err := json.Unmarshal(doc, &players); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCorruptDocument, err)
	}
	if players == nil {
		players = []domain.Player{}
	}
	return players, nil
}

// Encode serializes the collection; a nil slice encodes as an empty list.
func Encode(players []domain.Player) ([]byte, error) {
	if players == nil {
		players = []domain.Player{}
	}
	data, err := json.Marshal(players)
	if err != nil {
		return nil, fmt.Errorf("encoding highscores: %w", err)
	}
	return data, nil
}
