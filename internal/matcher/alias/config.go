package alias

type config struct {
	Patterns []string `json:"patterns"`
	Files    []string `json:"files"`
}
