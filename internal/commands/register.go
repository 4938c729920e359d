package commands

// NewDefaultRegistry builds the full command set.
func NewDefaultRegistry(deps Deps) (*Registry, error) {
	r := NewRegistry()

	if err := registerPassthroughs(r, deps.Console); err != nil {
		return nil, err
	}

	named := map[string]Handler{
		"help":     newHelp(r),
		"about":    newAbout(deps.BotName),
		"players":  newPlayers(deps.Roster, deps.Ratings),
		"elo":      newElo(deps.Roster),
		"say":      newSay(deps.Console),
		"timeban":  newTimeban(deps),
		"access":   newAccess(deps),
		"elolimit": newElolimit(deps),
		"shutdown": newShutdown(deps),
		"greeting": newGreeting(deps),
	}
	for name, h := range named {
		if err := r.Register(name, h); err != nil {
			return nil, err
		}
	}
	return r, nil
}
