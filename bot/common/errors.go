package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown to Discord user
	LogMessage  string // Internal message for logging
	Err         error  // Underlying error
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
	}
}

// NewSystemError creates an error for system issues (store outage, unexpected state)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: SystemErrorMessage,
		LogMessage:  logMessage,
		Err:         err,
	}
}

// SendText sends a plain reply and logs a failed send
func SendText(ctx context.Context, s MessageSender, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx)); err != nil {
		log.WithFields(log.Fields{
			"channel_id": channelID,
			"error":      err,
		}).Error("Failed to send message")
	}
}

// HandleError logs err and replies with its user message
func HandleError(ctx context.Context, s MessageSender, channelID string, err error) {
	var botErr *BotError
	if errors.As(err, &botErr) {
		log.WithFields(log.Fields{
			"channel_id":   channelID,
			"error":        botErr.Error(),
			"user_message": botErr.UserMessage,
		}).Error(botErr.LogMessage)
		SendText(ctx, s, channelID, botErr.UserMessage)
		return
	}

	log.WithFields(log.Fields{
		"channel_id": channelID,
		"error":      err,
	}).Error("Unexpected error handling message")
	SendText(ctx, s, channelID, SystemErrorMessage)
}
