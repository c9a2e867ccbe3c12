package pricecheck

import (
	"fmt"
	"time"

	"poporingbot/bot/common"
	"poporingbot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

const unknownValue = "Unknown"

// priceSummary holds the display strings for one price snapshot
type priceSummary struct {
	Price      string
	Volume     string
	LastUpdate string
	Footnote   string
}

// summarize renders a snapshot the way replies and logs show it
func summarize(data entities.PriceData, now time.Time) priceSummary {
	if !data.HasData() {
		return priceSummary{Price: unknownValue, Volume: unknownValue, LastUpdate: "-"}
	}

	summary := priceSummary{
		Price:      common.FormatAmount(data.Price),
		Volume:     common.FormatAmount(data.Volume),
		LastUpdate: common.FormatRelativeTime(common.FromUnix(data.Timestamp), now),
	}

	switch {
	case data.IsStale():
		summary.Price = common.FormatAmount(data.LastKnownPrice)
		summary.Footnote = "Last Price from: " +
			common.FormatRelativeTime(common.FromUnix(data.LastKnownTimestamp), now)
	case data.Price == 0:
		summary.Price = unknownValue
	}

	if data.Volume < 0 {
		summary.Volume = unknownValue
	}

	return summary
}

// description is the embed body
func (s priceSummary) description() string {
	desc := fmt.Sprintf("Price: **%s** z\nVolume: **%s** ea\n\nLast Update: %s", s.Price, s.Volume, s.LastUpdate)
	if s.Footnote != "" {
		desc += "\n" + s.Footnote
	}
	return desc
}

// logLine is the one-line lookup summary written to the log
func (s priceSummary) logLine(region entities.Region, item entities.Item) string {
	return fmt.Sprintf("%s %s / Price = %s / Volume = %s / Last Update %s / %s",
		region.Tag(), item.DisplayName, s.Price, s.Volume, s.LastUpdate, s.Footnote)
}

// BuildPriceEmbed creates the reply embed for a resolved item
func BuildPriceEmbed(region entities.Region, item entities.Item, data entities.PriceData, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: region.Tag() + " " + item.DisplayName,
			URL:  region.WebSearchURL() + ":" + item.Name,
		},
		Description: summarize(data, now).description(),
		Color:       common.ColorPrimary,
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: item.ThumbnailURL(),
		},
	}
}

// notFoundMessage is the reply when no item matches
func notFoundMessage(query string) string {
	return query + " not found!"
}

// serverErrorMessage is the reply when the price API fails for a resolved item
func serverErrorMessage(region entities.Region, item entities.Item) string {
	return region.Tag() + " " + item.DisplayName + " / Server Error"
}
