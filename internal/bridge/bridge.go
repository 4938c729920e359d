package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"console-warden/internal/commands"
	"console-warden/internal/events"
	"console-warden/internal/metrics"
)

// Session defines the Discord API methods used by the bridge.
type Session interface {
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Dispatcher receives bridged chat lines.
type Dispatcher interface {
	HandleChat(ctx context.Context, chat events.Chat, origin commands.Origin)
}

// Bridge mirrors console activity into one guild text channel and
// turns that channel's messages into bridged invocations.
type Bridge struct {
	session    Session
	dispatcher Dispatcher

	guildID     string
	channelName string
	botUserID   string

	channelCache     map[string]string
	channelCacheLock sync.RWMutex
}

func New(session Session, dispatcher Dispatcher, guildID, channelName string) *Bridge {
	return &Bridge{
		session:      session,
		dispatcher:   dispatcher,
		guildID:      guildID,
		channelName:  channelName,
		channelCache: make(map[string]string),
	}
}

// SetBotUserID records the session's own user so its messages are
// never re-dispatched. Called once the gateway handshake reports it.
func (b *Bridge) SetBotUserID(id string) {
	b.botUserID = id
}

// HandleMessage processes one channel message. Messages outside the
// relay channel, from bots, or from the session itself are ignored.
func (b *Bridge) HandleMessage(ctx context.Context, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == b.botUserID {
		return
	}
	if m.GuildID != b.guildID {
		return
	}

	channelID, err := b.getChannelID(m.GuildID, b.channelName)
	if err != nil || m.ChannelID != channelID {
		return
	}

	b.dispatcher.HandleChat(ctx, events.Chat{
		Name:    m.Author.Username,
		Message: m.Content,
	}, commands.OriginBridge)
}

// HandleFunc returns a function compatible with discordgo.AddHandler.
func (b *Bridge) HandleFunc(ctx context.Context) func(*discordgo.Session, *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		b.HandleMessage(ctx, m)
	}
}

// Send posts a message to the relay channel.
func (b *Bridge) Send(ctx context.Context, content string) error {
	channelID, err := b.getChannelID(b.guildID, b.channelName)
	if err != nil {
		metrics.BridgeMessagesSent.WithLabelValues("error").Inc()
		return err
	}

	if _, err := b.session.ChannelMessageSend(channelID, content); err != nil {
		metrics.BridgeMessagesSent.WithLabelValues("error").Inc()
		b.invalidateCache(b.guildID, b.channelName)
		return err
	}
	metrics.BridgeMessagesSent.WithLabelValues("ok").Inc()
	return nil
}

// Relay mirrors a console event into the channel. Only events a human
// reader cares about are forwarded.
func (b *Bridge) Relay(ctx context.Context, ev events.Event) {
	var content string
	switch e := ev.(type) {
	case events.Chat:
		content = fmt.Sprintf("**%s**: %s", e.Name, e.Message)
	case events.Connected:
		content = fmt.Sprintf("*%s connected*", e.Name)
	case events.Disconnected:
		if e.Kicked {
			content = fmt.Sprintf("*%s was kicked*", e.Name)
		} else {
			content = fmt.Sprintf("*%s disconnected*", e.Name)
		}
	case events.MapLoaded:
		content = fmt.Sprintf("*Map changed to %s*", e.Map)
	case events.VoteCalled:
		content = fmt.Sprintf("*Vote called by %s: %s*", e.Caller, e.Vote)
	case events.VoteResult:
		if e.Passed {
			content = "*Vote passed*"
		} else {
			content = "*Vote failed*"
		}
	default:
		return
	}

	if err := b.Send(ctx, content); err != nil {
		slog.Error("Failed to relay event", "type", ev.EventType(), "error", err)
	}
}

func (b *Bridge) getChannelID(guildID, channelName string) (string, error) {
	key := b.buildCacheKey(guildID, channelName)

	if id, ok := b.getCachedChannelID(key); ok {
		return id, nil
	}

	id, err := b.fetchChannelID(guildID, channelName)
	if err != nil {
		return "", err
	}

	b.setCachedChannelID(key, id)

	return id, nil
}

func (b *Bridge) getCachedChannelID(key string) (string, bool) {
	b.channelCacheLock.RLock()
	defer b.channelCacheLock.RUnlock()

	id, ok := b.channelCache[key]
	return id, ok
}

func (b *Bridge) setCachedChannelID(key, id string) {
	b.channelCacheLock.Lock()
	defer b.channelCacheLock.Unlock()

	b.channelCache[key] = id
}

func (b *Bridge) fetchChannelID(guildID, channelName string) (string, error) {
	channels, err := b.session.GuildChannels(guildID)
	if err != nil {
		slog.Error("Failed to fetch guild channels", "guild_id", guildID, "error", err)
		return "", err
	}

	for _, ch := range channels {
		if ch.Name == channelName && ch.Type == discordgo.ChannelTypeGuildText {
			return ch.ID, nil
		}
	}

	return "", fmt.Errorf("channel %s not found", channelName)
}

func (b *Bridge) invalidateCache(guildID, channelName string) {
	b.channelCacheLock.Lock()
	defer b.channelCacheLock.Unlock()
	delete(b.channelCache, b.buildCacheKey(guildID, channelName))
}

func (b *Bridge) buildCacheKey(guildID, channelName string) string {
	return fmt.Sprintf("%s:%s", guildID, channelName)
}
