package civdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"aoe2-balancer/internal/domain"
)

//go:embed civilizations.json maps.json
var dataFS embed.FS

// MapInfo describes one playable map.
type MapInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
}

// Catalog is the immutable reference data the balancing engine works
// against: every civilization with its ratings plus the known maps.
// Loaded once at startup and passed explicitly to whoever needs it.
type Catalog struct {
	patch    string
	civs     map[string]*domain.Civilization
	civNames []string
	maps     map[string]MapInfo
	mapNames []string
}

type ratingJSON struct {
	Tier      string `json:"tier"`
	Score     int    `json:"score"`
	EarlyGame int    `json:"early_game"`
	MidGame   int    `json:"mid_game"`
	LateGame  int    `json:"late_game"`
}

type civJSON struct {
	Name         string         `json:"name"`
	DisplayName  string         `json:"display_name"`
	FlankRating  ratingJSON     `json:"flank_rating"`
	PocketRating ratingJSON     `json:"pocket_rating"`
	Strengths    []string       `json:"strengths"`
	UniqueUnits  []string       `json:"unique_units"`
	TeamBonus    string         `json:"team_bonus"`
	MapRatings   map[string]int `json:"map_ratings"`
	Synergies    map[string]int `json:"synergies"`
	Counters     map[string]int `json:"counters"`
}

type civFileJSON struct {
	Meta struct {
		Patch string `json:"patch"`
	} `json:"meta"`
	Civilizations map[string]civJSON `json:"civilizations"`
}

type mapFileJSON struct {
	Maps map[string]MapInfo `json:"maps"`
}

// Load parses the embedded civilization and map data into a catalog.
func Load(logger zerolog.Logger) (*Catalog, error) {
	civBytes, err := dataFS.ReadFile("civilizations.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read civilization data: %w", err)
	}

	var civFile civFileJSON
	if err := json.Unmarshal(civBytes, &civFile); err != nil {
		return nil, fmt.Errorf("failed to parse civilization data: %w", err)
	}

	mapBytes, err := dataFS.ReadFile("maps.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read map data: %w", err)
	}

	var mapFile mapFileJSON
	if err := json.Unmarshal(mapBytes, &mapFile); err != nil {
		return nil, fmt.Errorf("failed to parse map data: %w", err)
	}

	c := &Catalog{
		patch: civFile.Meta.Patch,
		civs:  make(map[string]*domain.Civilization, len(civFile.Civilizations)),
		maps:  mapFile.Maps,
	}

	for key, cj := range civFile.Civilizations {
		civ, err := buildCiv(cj)
		if err != nil {
			return nil, fmt.Errorf("invalid civilization %q: %w", key, err)
		}
		c.civs[key] = civ
		c.civNames = append(c.civNames, key)
	}
	sort.Strings(c.civNames)

	for name := range c.maps {
		c.mapNames = append(c.mapNames, name)
	}
	sort.Strings(c.mapNames)

	logger.Info().
		Int("civilizations", len(c.civs)).
		Int("maps", len(c.maps)).
		Str("patch", c.patch).
		Msg("civilization catalog loaded")

	return c, nil
}

func buildCiv(cj civJSON) (*domain.Civilization, error) {
	flank, err := buildRating(cj.FlankRating)
	if err != nil {
		return nil, fmt.Errorf("flank rating: %w", err)
	}
	pocket, err := buildRating(cj.PocketRating)
	if err != nil {
		return nil, fmt.Errorf("pocket rating: %w", err)
	}

	return &domain.Civilization{
		Name:         cj.Name,
		DisplayName:  cj.DisplayName,
		FlankRating:  flank,
		PocketRating: pocket,
		Strengths:    cj.Strengths,
		UniqueUnits:  cj.UniqueUnits,
		TeamBonus:    cj.TeamBonus,
		MapRatings:   cj.MapRatings,
		Synergies:    cj.Synergies,
		Counters:     cj.Counters,
	}, nil
}

func buildRating(rj ratingJSON) (domain.CivRating, error) {
	for _, v := range []struct {
		name  string
		value int
	}{
		{"score", rj.Score},
		{"early_game", rj.EarlyGame},
		{"mid_game", rj.MidGame},
		{"late_game", rj.LateGame},
	} {
		if v.value < 1 || v.value > 10 {
			return domain.CivRating{}, fmt.Errorf("%s must be between 1 and 10, got %d", v.name, v.value)
		}
	}

	return domain.CivRating{
		Tier:      domain.ParseTier(rj.Tier),
		Score:     rj.Score,
		EarlyGame: rj.EarlyGame,
		MidGame:   rj.MidGame,
		LateGame:  rj.LateGame,
	}, nil
}

// Patch returns the game patch the catalog data was rated against.
func (c *Catalog) Patch() string {
	return c.patch
}

// Civ looks up a civilization by its catalog key.
func (c *Catalog) Civ(name string) (*domain.Civilization, bool) {
	civ, ok := c.civs[name]
	return civ, ok
}

// Names returns every civilization key in sorted order.
func (c *Catalog) Names() []string {
	return c.civNames
}

// Map looks up a map by name.
func (c *Catalog) Map(name string) (MapInfo, bool) {
	m, ok := c.maps[name]
	return m, ok
}

// MapNames returns every known map name in sorted order.
func (c *Catalog) MapNames() []string {
	return c.mapNames
}

// Len returns the number of civilizations in the catalog.
func (c *Catalog) Len() int {
	return len(c.civs)
}
