package persistence

import "strings"

// LikeEscapeClause pairs with EscapeLike, e.g. Where("name LIKE ? "+LikeEscapeClause, "%"+EscapeLike(s)+"%")
const LikeEscapeClause = "ESCAPE '!'"

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// EscapeLike escapes the LIKE wildcards of a user supplied keyword.
func EscapeLike(keyword string) string {
	return likeEscaper.Replace(keyword)
}
