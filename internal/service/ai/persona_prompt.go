package ai

import (
	"fmt"

	"github.com/alpacachat/alpaca/backend/internal/model/persona"
)

// PromptTemplate holds the system prompt format for a persona.
// SystemPrompt receives the creator name and then the product name.
type PromptTemplate struct {
	SystemPrompt string
}

const chillAssistantPrompt = "You are a chill chat assistant from the hood created by %s. This chatbot is called %s."

// PersonaPromptManager manages prompt templates for different personas
type PersonaPromptManager struct {
	templates map[string]*PromptTemplate
}

// NewPersonaPromptManager creates a new prompt manager with default templates
func NewPersonaPromptManager() *PersonaPromptManager {
	return &PersonaPromptManager{
		templates: map[string]*PromptTemplate{
			persona.DefaultID: {SystemPrompt: chillAssistantPrompt},
		},
	}
}

// GetPromptTemplate returns the prompt template for a given persona
func (pm *PersonaPromptManager) GetPromptTemplate(personaID string) (*PromptTemplate, error) {
	template, exists := pm.templates[personaID]
	if !exists {
		return nil, fmt.Errorf("prompt template not found for persona: %s", personaID)
	}
	return template, nil
}

// BuildSystemPrompt renders the system message for the persona, falling back to the
// chill assistant template for personas without their own.
func (pm *PersonaPromptManager) BuildSystemPrompt(p persona.Persona) string {
	template, err := pm.GetPromptTemplate(p.ID)
	if err != nil {
		return fmt.Sprintf(chillAssistantPrompt, p.Creator, p.Product)
	}
	return fmt.Sprintf(template.SystemPrompt, p.Creator, p.Product)
}
