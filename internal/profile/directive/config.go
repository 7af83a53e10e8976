package directive

type config struct {
	User                     string            `json:"user"`
	IdentityFile             string            `json:"identity_file"`
	PreferredAuthentications string            `json:"preferred_authentications"`
	Options                  map[string]string `json:"options"` // extra ssh directive -> value, empty value removes it
}
