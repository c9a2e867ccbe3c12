package common

import (
	"github.com/bwmarrin/discordgo"
)

// MessageSender is the part of the Discord session used to reply in a channel.
// *discordgo.Session satisfies it.
type MessageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}
