package game

import (
	"fmt"
	"strings"
)

type Division int

const (
	DivisionUnknown Division = 0
	DivisionWomens  Division = 1
	DivisionMixed   Division = 2
	DivisionOpen    Division = 3
)

type AgeBracket int

const (
	AgeBracketUnknown       AgeBracket = 0
	AgeBracketMasters       AgeBracket = 1
	AgeBracketGrandMasters  AgeBracket = 2
	AgeBracketU23           AgeBracket = 3
	AgeBracketU19           AgeBracket = 4
	AgeBracketCollege       AgeBracket = 5
	AgeBracketNoRestriction AgeBracket = 6
)

type League int

const (
	LeagueUnknown    League = 0
	LeagueUSAU       League = 1
	LeagueAUDL       League = 2
	LeagueMLU        League = 3
	LeagueWFDFClub   League = 4
	LeagueWFDFWorlds League = 5
)

var divisionNames = map[Division]string{
	DivisionWomens: "WOMENS",
	DivisionMixed:  "MIXED",
	DivisionOpen:   "OPEN",
}

var ageBracketNames = map[AgeBracket]string{
	AgeBracketMasters:       "MASTERS",
	AgeBracketGrandMasters:  "GRAND_MASTERS",
	AgeBracketU23:           "U_23",
	AgeBracketU19:           "U_19",
	AgeBracketCollege:       "COLLEGE",
	AgeBracketNoRestriction: "NO_RESTRICTION",
}

var leagueNames = map[League]string{
	LeagueUSAU:       "USAU",
	LeagueAUDL:       "AUDL",
	LeagueMLU:        "MLU",
	LeagueWFDFClub:   "WFDF_CLUB",
	LeagueWFDFWorlds: "WFDF_WORLDS",
}

func (d Division) String() string {
	if name, ok := divisionNames[d]; ok {
		return name
	}
	return "UNKNOWN"
}

func (a AgeBracket) String() string {
	if name, ok := ageBracketNames[a]; ok {
		return name
	}
	return "UNKNOWN"
}

func (l League) String() string {
	if name, ok := leagueNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

func ParseDivision(raw string) (Division, error) {
	value := normalizeEnum(raw)
	for division, name := range divisionNames {
		if name == value {
			return division, nil
		}
	}
	return DivisionUnknown, fmt.Errorf("unknown division %q", raw)
}

func ParseAgeBracket(raw string) (AgeBracket, error) {
	value := normalizeEnum(raw)
	for bracket, name := range ageBracketNames {
		if name == value {
			return bracket, nil
		}
	}
	return AgeBracketUnknown, fmt.Errorf("unknown age bracket %q", raw)
}

func ParseLeague(raw string) (League, error) {
	value := normalizeEnum(raw)
	for league, name := range leagueNames {
		if name == value {
			return league, nil
		}
	}
	return LeagueUnknown, fmt.Errorf("unknown league %q", raw)
}

// Classification groups games that may be compared with each other.
type Classification struct {
	Division   Division
	AgeBracket AgeBracket
	League     League
}

// DefaultClassification applies to accounts and lists that were never classified.
func DefaultClassification() Classification {
	return Classification{
		Division:   DivisionOpen,
		AgeBracket: AgeBracketNoRestriction,
		League:     LeagueUSAU,
	}
}

func (c Classification) String() string {
	return c.Division.String() + "/" + c.AgeBracket.String() + "/" + c.League.String()
}

func (c Classification) Validate() error {
	if _, ok := divisionNames[c.Division]; !ok {
		return fmt.Errorf("division is required")
	}
	if _, ok := ageBracketNames[c.AgeBracket]; !ok {
		return fmt.Errorf("age bracket is required")
	}
	if _, ok := leagueNames[c.League]; !ok {
		return fmt.Errorf("league is required")
	}
	return nil
}

func normalizeEnum(raw string) string {
	value := strings.ToUpper(strings.TrimSpace(raw))
	return strings.ReplaceAll(value, "-", "_")
}
