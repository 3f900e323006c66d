package covid

import "strings"

// regionSpace stands in for a space inside region names used as fetch keys.
const regionSpace = "+"

// CanadianProvinces is the fixed list of provinces offered by the province view,
// in encoded form.
var CanadianProvinces = []string{
	"Ontario",
	"Quebec",
	"British+Columbia",
	"Nova+Scotia",
	"Alberta",
	"Manitoba",
	"Prince+Edward+Island",
	"Saskatchewan",
	"Northwest+Territories",
	"New+Brunswick",
}

// EncodeRegion turns a display name into the key form used in fetch URLs.
func EncodeRegion(name string) string {
	return strings.ReplaceAll(name, " ", regionSpace)
}

// DecodeRegion turns an encoded key back into its display name.
func DecodeRegion(key string) string {
	return strings.ReplaceAll(key, regionSpace, " ")
}
