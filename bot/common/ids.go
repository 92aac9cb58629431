package common

import "strconv"

// ParseID converts a Discord snowflake to int64; invalid input gives 0
func ParseID(id string) int64 {
	v, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatID converts an int64 id to a Discord snowflake string
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ParseIDs converts a slice of snowflakes, skipping invalid ones
func ParseIDs(ids []string) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if v := ParseID(id); v != 0 {
			out = append(out, v)
		}
	}
	return out
}
