package persona

// DefaultID names the persona used when none is configured.
const DefaultID = "alpaca"

// Persona carries the names rendered into the system prompt and the shell's greeting.
type Persona struct {
	ID          string `json:"id"`
	Creator     string `json:"creator"`
	Product     string `json:"product"`
	Title       string `json:"title"`
	OpeningLine string `json:"openingLine"`
	Description string `json:"description,omitempty"`
}

// Seed provides the built-in personas.
func Seed() []Persona {
	return []Persona{
		{
			ID:          DefaultID,
			Creator:     "Pramit Acharjya",
			Product:     "Alpaca",
			Title:       "🦙 Chat Bot",
			OpeningLine: "Welcome! How can I assist you today?",
			Description: "A chill chat assistant from the hood.",
		},
	}
}
