package agent

// Skill describes one capability an agent advertises.
type Skill struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Card is the discovery document served at /.well-known/agent.json.
type Card struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	Version     string  `json:"version"`
	Skills      []Skill `json:"skills"`
}

// CardPath is where agents publish their card.
const CardPath = "/.well-known/agent.json"
