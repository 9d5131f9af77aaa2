package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/csvlist/internal/models"
)

var (
	_ list.Item = requestItem{}
)

// requestItem wraps [models.Request] to implement [list.Item].
type requestItem struct {
	request models.Request
}

func (i requestItem) FilterValue() string { return i.request.String() }
func (i requestItem) Title() string       { return i.request.Song }
func (i requestItem) Description() string {
	return fmt.Sprintf("%s • row %d", i.request.Artist, i.request.Row)
}

func requestItems(requests []models.Request) []list.Item {
	items := make([]list.Item, len(requests))
	for i, req := range requests {
		items[i] = requestItem{request: req}
	}
	return items
}
