package gstin

import "time"

// stateNames maps the 2-digit GSTIN prefix to the state it registers in.
var stateNames = map[string]string{
	"01": "Jammu and Kashmir",
	"02": "Himachal Pradesh",
	"03": "Punjab",
	"04": "Chandigarh",
	"05": "Uttarakhand",
	"06": "Haryana",
	"07": "Delhi",
	"08": "Rajasthan",
	"09": "Uttar Pradesh",
	"10": "Bihar",
	"18": "Assam",
	"19": "West Bengal",
	"21": "Odisha",
	"22": "Chhattisgarh",
	"23": "Madhya Pradesh",
	"24": "Gujarat",
	"27": "Maharashtra",
	"29": "Karnataka",
	"30": "Goa",
	"32": "Kerala",
	"33": "Tamil Nadu",
	"36": "Telangana",
	"37": "Andhra Pradesh",
}

// dummyRecord is the deterministic fallback when neither the cache nor
// the API can resolve a GSTIN. The same input always yields the same
// record, keyed by the state-code prefix.
func dummyRecord(gstin string) Record {
	code := StateCode(gstin)
	state, ok := stateNames[code]
	if !ok {
		state = "Unknown State"
	}
	return Record{
		GSTIN:     gstin,
		LegalName: "Registered Dealer (" + state + ")",
		State:     state,
		StateCode: code,
		Status:    "Active",
		FetchedAt: time.Time{},
	}
}
