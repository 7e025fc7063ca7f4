package enrich

import "strconv"

// AgeRange converts a numeric age string to its standard bucket,
// e.g. "30" -> "25-34". Non-numeric values (e.g. "prefer not to say", or an
// already bucketed range) pass through unchanged.
func AgeRange(age string) string {
	n, err := strconv.Atoi(age)
	if err != nil {
		return age
	}

	switch {
	case n >= 55:
		return "55+"
	case n >= 45:
		return "45-54"
	case n >= 35:
		return "35-44"
	case n >= 25:
		return "25-34"
	case n >= 20:
		return "20-24"
	case n >= 15:
		return "15-19"
	}

	return "N/A"
}

// AgeRangeHealth is the extended ladder used by the health campaign, which
// admits respondents from age 10 up.
func AgeRangeHealth(age string) string {
	n, err := strconv.Atoi(age)
	if err != nil {
		return age
	}

	switch {
	case n >= 65:
		return "65+"
	case n >= 56:
		return "56-64"
	case n >= 46:
		return "46-55"
	case n >= 36:
		return "36-45"
	case n >= 26:
		return "26-35"
	case n >= 21:
		return "21-25"
	case n >= 16:
		return "16-20"
	case n >= 10:
		return "10-15"
	}

	return "N/A"
}

// ageWithin reports whether age is a numeric string within [min, max].
func ageWithin(age string, min, max int) bool {
	n, err := strconv.Atoi(age)
	if err != nil {
		return false
	}
	return n >= min && n <= max
}
