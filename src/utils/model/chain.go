package model

import (
	"encoding/json"
	"strings"
)

// Chain identifier, accepted both as a JSON string and a JSON number
type ChainId string

func (self *ChainId) UnmarshalJSON(data []byte) (err error) {
	if string(data) == "null" {
		*self = ""
		return
	}

	if strings.HasPrefix(string(data), `"`) {
		var s string
		err = json.Unmarshal(data, &s)
		*self = ChainId(s)
		return
	}

	var n json.Number
	err = json.Unmarshal(data, &n)
	*self = ChainId(n.String())
	return
}
