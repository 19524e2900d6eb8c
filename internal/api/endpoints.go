package api

import "net/http"

// Authentication endpoints
const (
	AuthRegister  = "POST /authentication/register"
	AuthLogin     = "POST /authentication/log-in"
	AuthLogout    = "POST /authentication/log-out"
	AuthMe        = "GET /authentication"
	AuthRefresh   = "POST /authentication/refresh"
	UserUpdate    = "PATCH /users/me"
	OAuthStart    = "GET /auth/42"
	OAuthCallback = "GET /auth/42/callback"
	TwoFactorGen  = "POST /2fa/generate"
	TwoFactorOn   = "POST /2fa/turn-on"
	TwoFactorOff  = "POST /2fa/turn-off"
	TwoFactorAuth = "POST /2fa/authenticate"
	HealthCheck   = "GET /healthz"
)

// Channel endpoints
const (
	ChannelIndex          = "GET /channel/index"
	ChannelGet            = "GET /channel/{id}"
	ChannelCreate         = "POST /channel/create"
	ChannelChangeOwner    = "PATCH /channel/changeOwner/{id}"
	ChannelChangeStatus   = "PATCH /channel/changeStatus/{id}"
	ChannelAddAdmin       = "POST /channel/addAdmin"
	ChannelAddParticipant = "POST /channel/addParticipant"
	ChannelMute           = "POST /channel/mute"
	ChannelBan            = "POST /channel/ban"
	ChannelAuthorize      = "PATCH /channel/authorization"
	ChannelLeave          = "PATCH /channel/leave/{id}"
	ChannelJoin           = "PATCH /channel/join/{id}"
	ChannelDirect         = "POST /channel/direct"
	ChannelAll            = "GET /channel/all/{direct}"
	ChannelDelete         = "DELETE /channel/{id}"
	ChannelMessages       = "GET /channel/messages/{id}"
	ChannelPostMessage    = "POST /channel/messages/{id}"
)

// Game endpoints
const (
	GameCreate = "POST /game"
	GameList   = "GET /game"
	GameGet    = "GET /game/{id}"
	GameJoin   = "POST /game/{id}/join"
	GameScore  = "POST /game/{id}/score"
	GameDelete = "DELETE /game/{id}"
)

// Social endpoints
const (
	FriendRequest = "POST /friend"
	FriendAccept  = "PATCH /friend/{id}/accept"
	FriendList    = "GET /friend"
	FriendRemove  = "DELETE /friend/{id}"
	DuelChallenge = "POST /duel"
	DuelRespond   = "PATCH /duel/{id}"
	DuelList      = "GET /duel"
)

// PublicEndpoints defines endpoints that don't require authentication
var PublicEndpoints = map[string]bool{
	AuthRegister:  true,
	AuthLogin:     true,
	OAuthStart:    true,
	OAuthCallback: true,
	HealthCheck:   true,
}

// FirstFactorEndpoints accept a session that has not passed the second factor yet.
var FirstFactorEndpoints = map[string]bool{
	AuthLogout:    true,
	TwoFactorAuth: true,
}

// Route binds a ServeMux pattern to its handler.
type Route struct {
	Pattern string
	Handler http.HandlerFunc
}

func IsPublic(pattern string) bool {
	return PublicEndpoints[pattern]
}

func AllowsFirstFactor(pattern string) bool {
	return FirstFactorEndpoints[pattern]
}
