package common

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatCount formats a count with thousand separators
func FormatCount(n int64) string {
	str := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(str, "-")
	if neg {
		str = str[1:]
	}

	digits := len(str)
	if digits <= 3 {
		if neg {
			return "-" + str
		}
		return str
	}

	var result strings.Builder
	if neg {
		result.WriteByte('-')
	}
	for i, digit := range str {
		if i > 0 && (digits-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}
	return result.String()
}

// Mention returns the mention markup for a user id
func Mention(userID int64) string {
	return fmt.Sprintf("<@%d>", userID)
}

// RoleMention formats a role mention
func RoleMention(roleID int64) string {
	return fmt.Sprintf("<@&%d>", roleID)
}

// MessageLink returns a jump link to a message
func MessageLink(guildID, channelID, messageID int64) string {
	return fmt.Sprintf("https://discord.com/channels/%d/%d/%d", guildID, channelID, messageID)
}

// MethodActivity describes a drop method as an activity, e.g. "catching"
func MethodActivity(method string) string {
	switch method {
	case "battle":
		return "battling"
	case "catch":
		return "catching"
	case "fish":
		return "fishing"
	case "forced-rare":
		return "catching a rare"
	default:
		return method
	}
}

// Ordinal returns 1st, 2nd, 3rd...
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
