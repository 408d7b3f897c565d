package domain

const (
	basePrompt   = "You are a supportive mental health chatbot. Provide empathetic, helpful responses while maintaining appropriate boundaries."
	studentAddon = "\nYou are speaking with a student. Focus on providing emotional support, stress management techniques, and academic-related guidance."
	parentAddon  = "\nYou are speaking with a parent. Focus on providing guidance about supporting their child's mental health and academic well-being."
	generalAddon = "\nYou are speaking with a general user. Provide general mental health support and guidance."

	// PublicPrompt is used for unauthenticated chat.
	PublicPrompt = "You are a supportive mental health assistant. Provide general information and support while maintaining professional boundaries. If the user is in crisis, encourage them to seek professional help."
)

// SystemPrompt returns the system prompt tailored to role ("student", "parent" or anything else).
func SystemPrompt(role string) string {
	switch role {
	case "student":
		return basePrompt + studentAddon
	case "parent":
		return basePrompt + parentAddon
	default:
		return basePrompt + generalAddon
	}
}
