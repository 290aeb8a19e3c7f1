package conquest

import "sync"

// StandardTerritoryCount is the number of territories on the classic board.
const StandardTerritoryCount = 42

var (
	stdMapOnce sync.Once
	stdMapInst *Map
)

// StandardMap returns the classic 42-territory, 6-continent map. The map is
// built once and cached; callers must not mutate the returned map.
func StandardMap() *Map {
	stdMapOnce.Do(func() {
		stdMapInst = buildStandardMap()
	})
	return stdMapInst
}

func buildStandardMap() *Map {
	b := newMapBuilder()

	b.continent("North America", 5)
	b.continent("South America", 2)
	b.continent("Europe", 5)
	b.continent("Africa", 3)
	b.continent("Asia", 7)
	b.continent("Australia", 2)

	// North America
	b.territory("alaska", "Alaska", "North America")
	b.territory("northwest_territory", "Northwest Territory", "North America")
	b.territory("greenland", "Greenland", "North America")
	b.territory("alberta", "Alberta", "North America")
	b.territory("ontario", "Ontario", "North America")
	b.territory("quebec", "Quebec", "North America")
	b.territory("western_united_states", "Western United States", "North America")
	b.territory("eastern_united_states", "Eastern United States", "North America")
	b.territory("central_america", "Central America", "North America")

	// South America
	b.territory("venezuela", "Venezuela", "South America")
	b.territory("peru", "Peru", "South America")
	b.territory("brazil", "Brazil", "South America")
	b.territory("argentina", "Argentina", "South America")

	// Europe
	b.territory("iceland", "Iceland", "Europe")
	b.territory("great_britain", "Great Britain", "Europe")
	b.territory("scandinavia", "Scandinavia", "Europe")
	b.territory("northern_europe", "Northern Europe", "Europe")
	b.territory("western_europe", "Western Europe", "Europe")
	b.territory("southern_europe", "Southern Europe", "Europe")
	b.territory("ukraine", "Ukraine", "Europe")

	// Africa
	b.territory("north_africa", "North Africa", "Africa")
	b.territory("egypt", "Egypt", "Africa")
	b.territory("east_africa", "East Africa", "Africa")
	b.territory("congo", "Congo", "Africa")
	b.territory("south_africa", "South Africa", "Africa")
	b.territory("madagascar", "Madagascar", "Africa")

	// Asia
	b.territory("ural", "Ural", "Asia")
	b.territory("siberia", "Siberia", "Asia")
	b.territory("yakutsk", "Yakutsk", "Asia")
	b.territory("kamchatka", "Kamchatka", "Asia")
	b.territory("irkutsk", "Irkutsk", "Asia")
	b.territory("mongolia", "Mongolia", "Asia")
	b.territory("japan", "Japan", "Asia")
	b.territory("afghanistan", "Afghanistan", "Asia")
	b.territory("china", "China", "Asia")
	b.territory("middle_east", "Middle East", "Asia")
	b.territory("india", "India", "Asia")
	b.territory("siam", "Siam", "Asia")

	// Australia
	b.territory("indonesia", "Indonesia", "Australia")
	b.territory("new_guinea", "New Guinea", "Australia")
	b.territory("western_australia", "Western Australia", "Australia")
	b.territory("eastern_australia", "Eastern Australia", "Australia")

	borders := [][2]string{
		{"alaska", "northwest_territory"}, {"alaska", "alberta"}, {"alaska", "kamchatka"},
		{"northwest_territory", "alberta"}, {"northwest_territory", "ontario"}, {"northwest_territory", "greenland"},
		{"greenland", "ontario"}, {"greenland", "quebec"}, {"greenland", "iceland"},
		{"alberta", "ontario"}, {"alberta", "western_united_states"},
		{"ontario", "quebec"}, {"ontario", "western_united_states"}, {"ontario", "eastern_united_states"},
		{"quebec", "eastern_united_states"},
		{"western_united_states", "eastern_united_states"}, {"western_united_states", "central_america"},
		{"eastern_united_states", "central_america"},
		{"central_america", "venezuela"},

		{"venezuela", "peru"}, {"venezuela", "brazil"},
		{"peru", "brazil"}, {"peru", "argentina"},
		{"brazil", "argentina"}, {"brazil", "north_africa"},

		{"iceland", "great_britain"}, {"iceland", "scandinavia"},
		{"great_britain", "scandinavia"}, {"great_britain", "northern_europe"}, {"great_britain", "western_europe"},
		{"scandinavia", "northern_europe"}, {"scandinavia", "ukraine"},
		{"northern_europe", "western_europe"}, {"northern_europe", "southern_europe"}, {"northern_europe", "ukraine"},
		{"western_europe", "southern_europe"}, {"western_europe", "north_africa"},
		{"southern_europe", "ukraine"}, {"southern_europe", "north_africa"}, {"southern_europe", "egypt"},
		{"southern_europe", "middle_east"},
		{"ukraine", "ural"}, {"ukraine", "afghanistan"}, {"ukraine", "middle_east"},

		{"north_africa", "egypt"}, {"north_africa", "east_africa"}, {"north_africa", "congo"},
		{"egypt", "east_africa"}, {"egypt", "middle_east"},
		{"east_africa", "congo"}, {"east_africa", "south_africa"}, {"east_africa", "madagascar"},
		{"east_africa", "middle_east"},
		{"congo", "south_africa"},
		{"south_africa", "madagascar"},

		{"ural", "siberia"}, {"ural", "afghanistan"}, {"ural", "china"},
		{"siberia", "yakutsk"}, {"siberia", "irkutsk"}, {"siberia", "mongolia"}, {"siberia", "china"},
		{"yakutsk", "kamchatka"}, {"yakutsk", "irkutsk"},
		{"kamchatka", "irkutsk"}, {"kamchatka", "mongolia"}, {"kamchatka", "japan"},
		{"irkutsk", "mongolia"},
		{"mongolia", "japan"}, {"mongolia", "china"},
		{"afghanistan", "china"}, {"afghanistan", "india"}, {"afghanistan", "middle_east"},
		{"china", "india"}, {"china", "siam"},
		{"middle_east", "india"},
		{"india", "siam"},
		{"siam", "indonesia"},

		{"indonesia", "new_guinea"}, {"indonesia", "western_australia"},
		{"new_guinea", "western_australia"}, {"new_guinea", "eastern_australia"},
		{"western_australia", "eastern_australia"},
	}
	for _, e := range borders {
		b.border(e[0], e[1])
	}

	return b.m
}
