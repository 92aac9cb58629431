package database

import (
	"fmt"
	"strings"
)

// ConstructDatabaseURL joins a server URL and a database name, keeping any
// query parameters and defaulting sslmode to disable. An empty name returns
// the base URL unchanged.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	base, query, _ := strings.Cut(strings.TrimRight(baseURL, "/"), "?")
	base = strings.TrimRight(base, "/")

	if !strings.Contains(query, "sslmode=") {
		if query != "" {
			query += "&"
		}
		query += "sslmode=disable"
	}

	return fmt.Sprintf("%s/%s?%s", base, databaseName, query)
}
