package collector

import (
	"strconv"

	"nbadata-backend/lib/scrapers/nbastats"
	"nbadata-backend/lib/table"
)

// PlayersTable turns the roster into the anchor table of the merge.
func PlayersTable(players []nbastats.Player) table.Table {
	out := table.New("id", "full_name")
	for _, player := range players {
		out.Append(strconv.Itoa(player.ID), player.FullName)
	}
	return out
}

// Merge left-joins the four tables into one wide table. Every player
// row survives regardless of matches; players with several season rows
// in stats or salaries expand multiplicatively. Column collisions on
// the right-hand side are renamed with a per-join suffix.
func Merge(players, stats, awards, salaries table.Table) table.Table {
	merged := players.LeftJoin(stats, "id", "player_id", "_stats")
	merged = merged.LeftJoin(awards, "player_id", "player_id", "_awards")
	merged = merged.LeftJoin(salaries, "full_name", "full_name", "_salary")
	return merged
}
