package domain

// Level is a user's access level. Levels are ordered; comparisons between
// them are ordinal.
type Level int

const (
	LevelNone Level = iota
	LevelUser
	LevelSuperUser
	LevelAdmin
	LevelOwner
)

func (l Level) String() string {
	switch l {
	case LevelUser:
		return "user"
	case LevelSuperUser:
		return "superuser"
	case LevelAdmin:
		return "admin"
	case LevelOwner:
		return "owner"
	default:
		return "none"
	}
}

// ParseLevel maps a level token to a Level, returning LevelNone and false
// for unknown tokens.
func ParseLevel(token string) (Level, bool) {
	switch token {
	case "user":
		return LevelUser, true
	case "superuser":
		return LevelSuperUser, true
	case "admin":
		return LevelAdmin, true
	case "owner":
		return LevelOwner, true
	case "none":
		return LevelNone, true
	default:
		return LevelNone, false
	}
}
