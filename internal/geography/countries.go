package geography

import "strings"

// WorldAverageDensity is used for countries missing from the density table (people/km²).
const WorldAverageDensity = 50.0

// countryDensity maps ISO 3166-1 alpha-2 codes to people per km².
var countryDensity = map[string]float64{
	"AR": 17,
	"AT": 109,
	"AU": 3,
	"BD": 1265,
	"BE": 383,
	"BR": 25,
	"CA": 4,
	"CH": 219,
	"CL": 26,
	"CN": 153,
	"CO": 46,
	"CZ": 139,
	"DE": 240,
	"DK": 137,
	"EG": 103,
	"ES": 94,
	"ET": 115,
	"FI": 18,
	"FR": 119,
	"GB": 281,
	"GR": 81,
	"ID": 151,
	"IE": 72,
	"IN": 464,
	"IT": 206,
	"JP": 347,
	"KE": 94,
	"KR": 527,
	"MX": 66,
	"NG": 226,
	"NL": 508,
	"NO": 15,
	"NZ": 19,
	"PE": 26,
	"PH": 368,
	"PK": 287,
	"PL": 124,
	"PT": 111,
	"RU": 9,
	"SA": 16,
	"SE": 25,
	"TH": 137,
	"TR": 110,
	"UA": 75,
	"US": 36,
	"VN": 314,
	"ZA": 49,
}

// CountryDensity returns the population density for an ISO alpha-2 country
// code and whether the code was found. Unknown codes resolve to WorldAverageDensity.
func CountryDensity(code string) (float64, bool) {
	if d, ok := countryDensity[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return d, true
	}
	return WorldAverageDensity, false
}
