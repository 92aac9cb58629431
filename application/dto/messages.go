package dto

// InboundEmbed is the part of a message embed the drop watcher reads
type InboundEmbed struct {
	Description string
	Color       int
}

// MessageReference points at the message a reply answers
type MessageReference struct {
	ChannelID int64
	MessageID int64
	// ResolvedAuthorID is set when the gateway delivered the referenced message
	ResolvedAuthorID *int64
}

// InboundMessage is a gateway message stripped of transport details
type InboundMessage struct {
	ID        int64
	GuildID   int64
	ChannelID int64
	AuthorID  int64
	Content   string
	Embeds    []InboundEmbed
	Reference *MessageReference
	IsEdit    bool
}

// FirstEmbed returns the first embed, or an empty one
func (m InboundMessage) FirstEmbed() InboundEmbed {
	if len(m.Embeds) == 0 {
		return InboundEmbed{}
	}
	return m.Embeds[0]
}

// FetchedMessage is a message fetched back from the platform
type FetchedMessage struct {
	ID        int64
	ChannelID int64
	AuthorID  int64
}
