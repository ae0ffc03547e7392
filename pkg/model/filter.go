package model

// FlagFilter is the tri-state flag filter of the response listing.
type FlagFilter int

const (
	FlagAny FlagFilter = iota
	FlagFlagged
	FlagUnflagged
)

// Filter selector values as used by the page's filter control.
const (
	FilterValueFlag   = "flag"
	FilterValueNoFlag = "no-flag"
	FilterValueAll    = "all"
)

// ParseFilterValue maps a filter selector value to a FlagFilter.
// Anything other than "flag" or "no-flag" means no filtering.
func ParseFilterValue(v string) FlagFilter {
	switch v {
	case FilterValueFlag:
		return FlagFlagged
	case FilterValueNoFlag:
		return FlagUnflagged
	default:
		return FlagAny
	}
}

// ParseFlagQuery reads the flag query parameter as written into page URLs.
// "true" and "false" select a filter; "null", "" and garbage mean any.
func ParseFlagQuery(v string) FlagFilter {
	switch v {
	case "true", "True", "1":
		return FlagFlagged
	case "false", "False", "0":
		return FlagUnflagged
	default:
		return FlagAny
	}
}

// QueryValue returns the API parameter value and whether it should be sent.
func (f FlagFilter) QueryValue() (string, bool) {
	switch f {
	case FlagFlagged:
		return "true", true
	case FlagUnflagged:
		return "false", true
	default:
		return "", false
	}
}

// LocationValue is the flag value mirrored into the page URL.
func (f FlagFilter) LocationValue() string {
	if v, ok := f.QueryValue(); ok {
		return v
	}
	return "null"
}

// SelectorValue is the filter control value for f.
func (f FlagFilter) SelectorValue() string {
	switch f {
	case FlagFlagged:
		return FilterValueFlag
	case FlagUnflagged:
		return FilterValueNoFlag
	default:
		return FilterValueAll
	}
}

// Next cycles any -> flagged -> unflagged -> any.
func (f FlagFilter) Next() FlagFilter {
	switch f {
	case FlagAny:
		return FlagFlagged
	case FlagFlagged:
		return FlagUnflagged
	default:
		return FlagAny
	}
}

func (f FlagFilter) String() string {
	switch f {
	case FlagFlagged:
		return "flagged"
	case FlagUnflagged:
		return "unflagged"
	default:
		return "any"
	}
}
