package rider

// scottishStations is the fixed list of stations a journey may start or end at.
var scottishStations = []string{
	"Glasgow Central",
	"Edinburgh Waverley",
	"Aberdeen",
	"Inverness",
	"Dundee",
	"Perth",
	"Stirling",
	"Aviemore",
	"Fort William",
	"Kyle of Lochalsh",
	"Oban",
	"Mallaig",
	"Pitlochry",
	"Gleneagles",
	"Ayr",
	"Dumfries",
	"Kilmarnock",
	"Motherwell",
	"Paisley Gilmour Street",
	"Haymarket",
}

var stationSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(scottishStations))
	for _, s := range scottishStations {
		m[s] = struct{}{}
	}
	return m
}()

// Stations returns a copy of the known stations.
func Stations() []string {
	out := make([]string, len(scottishStations))
	copy(out, scottishStations)
	return out
}

// IsKnownStation reports whether name is an exact match for a known station.
func IsKnownStation(name string) bool {
	_, ok := stationSet[name]
	return ok
}
