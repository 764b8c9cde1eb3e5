package gateway

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
)

// Fetcher answers snapshot queries through gateway calls.
type Fetcher struct {
	gw *Gateway
}

func NewFetcher(gw *Gateway) *Fetcher {
	return &Fetcher{gw: gw}
}

type serverScopedQuery struct {
	ServerID string `json:"server_id"`
}

type historyQuery struct {
	ChannelID string  `json:"channel_id"`
	Cursor    *string `json:"cursor,omitempty"`
}

func (f *Fetcher) ListChannels(ctx context.Context, serverID string) ([]models.Channel, error) {
	raw, err := f.gw.Call(ctx, "channels.list", serverScopedQuery{ServerID: serverID})
	if err != nil {
		return nil, err
	}
	var channels []models.Channel
	if err := jsoniter.Unmarshal(raw, &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

func (f *Fetcher) ListMembers(ctx context.Context, serverID string) ([]models.Member, error) {
	raw, err := f.gw.Call(ctx, "members.list", serverScopedQuery{ServerID: serverID})
	if err != nil {
		return nil, err
	}
	var members []models.Member
	if err := jsoniter.Unmarshal(raw, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (f *Fetcher) ListMessages(ctx context.Context, channelID string, cursor *string) (models.ChannelSnapshot, error) {
	raw, err := f.gw.Call(ctx, "messages.history", historyQuery{ChannelID: channelID, Cursor: cursor})
	if err != nil {
		return models.ChannelSnapshot{}, err
	}
	var page models.ChannelSnapshot
	if err := jsoniter.Unmarshal(raw, &page); err != nil {
		return models.ChannelSnapshot{}, err
	}
	return page, nil
}

func (f *Fetcher) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	raw, err := f.gw.Call(ctx, "dm.list", nil)
	if err != nil {
		return nil, err
	}
	var convs []models.Conversation
	if err := jsoniter.Unmarshal(raw, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}
