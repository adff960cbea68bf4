package minecraft

// LaunchAuthData is an interface defining the data required to authenticate
type LaunchAuthData interface {
	// GetAccessToken returns the access token (strictly required)
	GetAccessToken() string
	// GetUUID returns the users UUID (strictly required)
	GetUUID() string
	// GetPlayerName returns the users player name (the one that also appears in game)
	GetPlayerName() string
	// GetUserType returns the users user type (legacy, mojang or msa).
	// "legacy" is the old minecraft account type (should not be encountered anymore)
	// "mojang" was the new minecraft account type (being replaced by "msa")
	// "msa" is the new microsoft account type
	GetUserType() string
	// GetXUID returns the users XUID (only for xbox live accounts – user type "msa"))
	GetXUID() string
}

// OfflineSession is used when no account is available
type OfflineSession struct {
	PlayerName string
}

// zero uuid, offline servers derive their own one
const offlineUUID = "00000000-0000-0000-0000-000000000000"

func (o OfflineSession) GetAccessToken() string { return "0" }
func (o OfflineSession) GetUUID() string        { return offlineUUID }
func (o OfflineSession) GetUserType() string    { return "legacy" }
func (o OfflineSession) GetXUID() string        { return "" }

func (o OfflineSession) GetPlayerName() string {
	if o.PlayerName == "" {
		return "Player"
	}
	return o.PlayerName
}
