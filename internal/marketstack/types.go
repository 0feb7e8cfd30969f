package marketstack

import (
	"encoding/json"
	"strconv"
	"strings"
)

// eodResponse is the raw body of /eod/latest.
type eodResponse struct {
	Data  []eodRow  `json:"data"`
	Error *apiFault `json:"error"`
}

// eodRow is a single end-of-day bar. Marketstack occasionally sends numbers
// as strings, so prices are decoded defensively.
type eodRow struct {
	Symbol   string   `json:"symbol"`
	Close    flexNull `json:"close"`
	AdjClose flexNull `json:"adj_close"`
	Date     string   `json:"date"`
}

type apiFault struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// flexNull is a nullable float that accepts numbers or numeric strings.
// Anything else decodes as null.
type flexNull struct {
	v *float64
}

func (f *flexNull) UnmarshalJSON(data []byte) error {
	f.v = nil
	if string(data) == "null" {
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.v = &num
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			f.v = &v
		}
	}
	return nil
}
