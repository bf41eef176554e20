package chat

const (
	ChannelPublic  = "public"
	ChannelPrivate = "private"

	KindMessage = "message"
	KindSystem  = "system"

	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
	MaxMessageLength    = 4000
)

// DefaultChannels are created at startup when missing.
var DefaultChannels = []Channel{
	{ID: "general", Name: "General", Type: ChannelPublic},
	{ID: "engineering", Name: "Engineering", Type: ChannelPublic},
	{ID: "hr-announcements", Name: "HR Announcements", Type: ChannelPublic},
}
