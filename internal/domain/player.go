package domain

// Player is a single persisted highscore record
type Player struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email,omitempty"`
	Highscore       int    `json:"highscore"`
	LevelHighscores []int  `json:"level_highscores,omitempty"`
}

// HasLevels reports whether the overall highscore is derived from level scores
func (p *Player) HasLevels() bool {
	return len(p.LevelHighscores) > 0
}

// LevelScore returns the stored score for a 1-indexed level, or 0 if unset
func (p *Player) LevelScore(level int) int {
	if level < 1 || level > len(p.LevelHighscores) {
		return 0
	}
	return p.LevelHighscores[level-1]
}

// RecomputeHighscore sets the overall highscore to the sum of all level scores
func (p *Player) RecomputeHighscore() {
	total := 0
	for _, s := range p.LevelHighscores {
		total += s
	}
	p.Highscore = total
}

// Clone returns a deep copy so callers cannot alias the repository's slices
func (p Player) Clone() *Player {
	c := p
	if p.LevelHighscores != nil {
		c.LevelHighscores = append([]int(nil), p.LevelHighscores...)
	}
	return &c
}
