package domain

import (
	"fmt"
	"strings"
)

// SubmissionPayload is the wire shape of a highscore submission, shared by the
// HTTP API and the Kafka topic. Pointers distinguish absent fields from zeros.
type SubmissionPayload struct {
	Name             *string `json:"name,omitempty"`
	PlayerName       *string `json:"player_name,omitempty"`
	OverallHighscore *int    `json:"overall_highscore,omitempty"`
	Level            *int    `json:"level,omitempty"`
	LevelHighscore   *int    `json:"level_highscore,omitempty"`
}

// Command validates the payload shape. Name length is checked by the repository.
func (p SubmissionPayload) Command() (SubmitHighscore, error) {
	var cmd SubmitHighscore

	switch {
	case p.Name != nil:
		cmd.Name = strings.TrimSpace(*p.Name)
	case p.PlayerName != nil:
		cmd.Name = strings.TrimSpace(*p.PlayerName)
	default:
		return cmd, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}

	if p.Level != nil {
		if *p.Level < 1 {
			return cmd, fmt.Errorf("%w: level must be positive", ErrInvalidArgument)
		}
		if p.LevelHighscore == nil {
			return cmd, fmt.Errorf("%w: level_highscore is required with level", ErrInvalidArgument)
		}
		cmd.Level = *p.Level
		cmd.Score = *p.LevelHighscore
	} else {
		if p.OverallHighscore == nil {
			return cmd, fmt.Errorf("%w: overall_highscore is required", ErrInvalidArgument)
		}
		cmd.Score = *p.OverallHighscore
	}

	if cmd.Score < 0 {
		return cmd, fmt.Errorf("%w: score must not be negative", ErrInvalidArgument)
	}
	return cmd, nil
}
