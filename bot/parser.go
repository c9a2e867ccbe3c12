package bot

import (
	"strings"

	"poporingbot/domain/entities"
)

// ServerCommand routes a query to the settings subcommands
const ServerCommand = "cmd"

// ParsedMessage is the routing target extracted from a message.
// An empty Server means the channel or guild default applies.
type ParsedMessage struct {
	Server string
	Query  string
}

// ParseMessage extracts the target server and query from message content.
// It returns false when the message is not addressed to the bot or has no query.
//
// The bot reacts to a mention prefix, a poporing search deep link, or any DM.
// A "/" splits the body on its first occurrence into server and query,
// overriding the server implied by a deep link.
func ParseMessage(content, botUserID string, isDM bool) (ParsedMessage, bool) {
	trimmed := strings.TrimSpace(content)

	var parsed ParsedMessage
	var body string

	if rest, ok := stripMention(trimmed, botUserID); ok {
		body = rest
	} else if rest, ok := strings.CutPrefix(trimmed, entities.RegionSEA.WebSearchURL()); ok {
		parsed.Server = string(entities.RegionSEA)
		body = strings.ReplaceAll(rest, "_", " ")
	} else if rest, ok := strings.CutPrefix(trimmed, entities.RegionGlobal.WebSearchURL()); ok {
		parsed.Server = string(entities.RegionGlobal)
		body = strings.ReplaceAll(rest, "_", " ")
	} else if isDM {
		body = trimmed
	} else {
		return ParsedMessage{}, false
	}

	body = strings.TrimSpace(body)
	if server, query, found := strings.Cut(body, "/"); found {
		parsed.Server = strings.TrimSpace(server)
		body = strings.TrimSpace(query)
	}

	if body == "" {
		return ParsedMessage{}, false
	}
	parsed.Query = body

	if parsed.Query == "help" {
		parsed.Server = ServerCommand
	}

	return parsed, true
}

// stripMention removes a leading <@id> or <@!id> mention of the bot
func stripMention(content, botUserID string) (string, bool) {
	if botUserID == "" {
		return "", false
	}
	for _, prefix := range []string{"<@" + botUserID + ">", "<@!" + botUserID + ">"} {
		if rest, ok := strings.CutPrefix(content, prefix); ok {
			return rest, true
		}
	}
	return "", false
}
