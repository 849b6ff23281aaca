package entities

// GameType identifies the title a challenge is played on
type GameType string

const (
	GameTypeFIFA   GameType = "fifa"
	GameTypeNBA2K  GameType = "2k"
	GameTypeMadden GameType = "madden"
)

// AllGameTypes lists every supported game type
var AllGameTypes = []GameType{GameTypeFIFA, GameTypeNBA2K, GameTypeMadden}

// IsValid returns true if the game type is supported
func (g GameType) IsValid() bool {
	switch g {
	case GameTypeFIFA, GameTypeNBA2K, GameTypeMadden:
		return true
	}
	return false
}
