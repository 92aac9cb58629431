package services

import (
	"regexp"
	"strings"

	"plushiebot/domain/entities"
)

// ClassificationKind is the result of inspecting a game bot message
type ClassificationKind string

const (
	KindNotRelevant ClassificationKind = "not_relevant"
	KindBattle      ClassificationKind = "battle"
	KindCatch       ClassificationKind = "catch"
	KindFish        ClassificationKind = "fish"
	KindForcedRare  ClassificationKind = "forced_rare"
)

// Classification describes a drop-eligible message
type Classification struct {
	Kind ClassificationKind
	// Username is the lowercase winner name of a battle message
	Username string
	// Species is the caught species of a catch/fish reply
	Species string
}

// Relevant returns true for any kind that can lead to a drop
func (c Classification) Relevant() bool {
	return c.Kind != KindNotRelevant && c.Kind != ""
}

// Method maps the classification to the drop method it records
func (c Classification) Method() entities.DropMethod {
	switch c.Kind {
	case KindBattle:
		return entities.DropMethodBattle
	case KindCatch:
		return entities.DropMethodCatch
	case KindFish:
		return entities.DropMethodFish
	case KindForcedRare:
		return entities.DropMethodForcedRare
	default:
		return ""
	}
}

// ReplyMessage is the part of an edited game bot reply the classifier reads
type ReplyMessage struct {
	IsEdit      bool
	IsReply     bool
	Description string
	Color       int
}

var (
	battleWinnerPattern  = regexp.MustCompile(`(?i)\*\*\s*([^*]+?)\s*\*\*\s*won the battle`)
	caughtSpeciesPattern = regexp.MustCompile(`you caught an? (?:level \d+ )?(?:shiny )?([a-z][a-z0-9'\-]*)`)
)

const (
	phraseWonBattle   = "won the battle"
	phraseYouReceived = "you received"
	phrasePokecoin    = "pokecoin"
	phraseYouCaught   = "you caught a"
)

var notRelevant = Classification{Kind: KindNotRelevant}

// MessageClassifier turns game bot messages into drop classifications
type MessageClassifier struct {
	fishColor   int
	rareSpecies string
}

// NewMessageClassifier creates a classifier for the given fish embed color
// and rare species name
func NewMessageClassifier(fishColor int, rareSpecies string) *MessageClassifier {
	return &MessageClassifier{
		fishColor:   fishColor,
		rareSpecies: strings.ToLower(strings.TrimSpace(rareSpecies)),
	}
}

// ClassifyBattle inspects a channel message for a battle win
func (c *MessageClassifier) ClassifyBattle(content string) Classification {
	lower := strings.ToLower(content)
	if !strings.Contains(lower, phraseWonBattle) ||
		!strings.Contains(lower, phraseYouReceived) ||
		!strings.Contains(lower, phrasePokecoin) {
		return notRelevant
	}

	match := battleWinnerPattern.FindStringSubmatch(content)
	if match == nil {
		return notRelevant
	}

	username := strings.ToLower(strings.TrimSpace(match[1]))
	if username == "" {
		return notRelevant
	}

	return Classification{Kind: KindBattle, Username: username}
}

// ClassifyReply inspects an edited reply embed for a catch or fish
func (c *MessageClassifier) ClassifyReply(msg ReplyMessage) Classification {
	if !msg.IsEdit || !msg.IsReply {
		return notRelevant
	}

	cleaned := strings.ToLower(strings.ReplaceAll(msg.Description, "**", ""))
	if !strings.Contains(cleaned, phraseYouCaught) {
		return notRelevant
	}

	species := ""
	if match := caughtSpeciesPattern.FindStringSubmatch(cleaned); match != nil {
		species = match[1]
	}
	if species == "" {
		return notRelevant
	}

	if c.rareSpecies != "" && species == c.rareSpecies {
		return Classification{Kind: KindForcedRare, Species: species}
	}
	if msg.Color == c.fishColor {
		return Classification{Kind: KindFish, Species: species}
	}
	return Classification{Kind: KindCatch, Species: species}
}
