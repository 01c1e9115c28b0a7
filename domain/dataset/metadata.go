package dataset

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Metadata key aliases seen in the wild. The first matching key wins.
var (
	nameKeys      = []string{"name", "Name", "SM"}
	longitudeKeys = []string{"longitude", "Longitude", "lng", "long"}
	latitudeKeys  = []string{"latitude", "Latitude", "lat"}
	popNameKeys   = []string{"name", "Name", "population", "Population"}
)

func metaString(md json.RawMessage, keys []string) (string, bool) {
	if len(md) == 0 || !gjson.ValidBytes(md) {
		return "", false
	}
	for _, key := range keys {
		if v := gjson.GetBytes(md, key); v.Exists() {
			return v.String(), true
		}
	}
	return "", false
}

func metaFloat(md json.RawMessage, keys []string) (float64, bool) {
	if len(md) == 0 || !gjson.ValidBytes(md) {
		return 0, false
	}
	for _, key := range keys {
		v := gjson.GetBytes(md, key)
		if v.Exists() && v.Type != gjson.Null {
			return v.Float(), true
		}
	}
	return 0, false
}
