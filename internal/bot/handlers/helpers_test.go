package handlers

import (
	"strings"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
)

func TestCommandArgs(t *testing.T) {
	assert.Nil(t, commandArgs("/list"))
	assert.Nil(t, commandArgs(""))
	assert.Equal(t, []string{"1"}, commandArgs("/friend 1"))
	assert.Equal(t, []string{"1", "What", "is", "it?"}, commandArgs("/ask 1 What is it?"))
	assert.Equal(t, []string{"1"}, commandArgs("/friend   1  "))
}

func TestWithinLimitCountsCharactersNotBytes(t *testing.T) {
	// 130 two-byte characters are 260 bytes but still within a 255-character
	// limit, matching what the directory API accepts.
	cyrillic := strings.Repeat("ф", 130)
	assert.True(t, withinLimit(cyrillic, 255))

	assert.True(t, withinLimit(strings.Repeat("a", 255), 255))
	assert.False(t, withinLimit(strings.Repeat("a", 256), 255))
	assert.False(t, withinLimit(strings.Repeat("ф", 256), 255))
}

func TestBestPhotoSize(t *testing.T) {
	sizes := []models.PhotoSize{
		{FileID: "small", Width: 90, Height: 60},
		{FileID: "large", Width: 1280, Height: 960},
		{FileID: "medium", Width: 320, Height: 240},
	}
	assert.Equal(t, "large", bestPhotoSize(sizes).FileID)

	single := []models.PhotoSize{{FileID: "only", Width: 90, Height: 60}}
	assert.Equal(t, "only", bestPhotoSize(single).FileID)
}

func TestBotCommandsSortedWithoutSlash(t *testing.T) {
	registered := RegisterAllCommands(HandlerDeps{})

	commands := BotCommands(registered)
	assert.Len(t, commands, len(registered))

	var names []string
	for _, c := range commands {
		names = append(names, c.Command)
	}
	assert.Equal(t, []string{"addfriend", "ask", "cancel", "friend", "help", "list", "start"}, names)
}
