package family

type config struct {
	Families []string `json:"families"`
}
