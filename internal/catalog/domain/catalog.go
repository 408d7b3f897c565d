package domain

import "errors"

// ErrResourceNotFound is returned for an unknown resource id.
var ErrResourceNotFound = errors.New("resource not found")

// Resource is a short self-help resource.
type Resource struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Type            string `json:"type"`
	DurationMinutes int    `json:"duration"`
}

// TherapeuticExercise is a guided exercise with ordered steps.
type TherapeuticExercise struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Steps           []string `json:"steps"`
	DurationMinutes int      `json:"duration"`
	Difficulty      string   `json:"difficulty"`
}

// Resources is the built-in resource list.
var Resources = []Resource{
	{ID: "1", Title: "Basic Meditation", Description: "A simple meditation exercise for beginners", Type: "meditation", DurationMinutes: 10},
	{ID: "2", Title: "Deep Breathing", Description: "Learn deep breathing techniques for stress relief", Type: "breathing", DurationMinutes: 5},
}

// TherapeuticExercises groups the built-in guided exercises by category.
var TherapeuticExercises = map[string][]TherapeuticExercise{
	"meditation": {
		{
			ID: "med-1", Name: "Body Scan", Description: "Move attention slowly through the body to release tension",
			Steps: []string{
				"Sit or lie down comfortably and close your eyes",
				"Bring attention to your feet and notice any sensations",
				"Move your attention up through legs, torso, arms and head",
				"Breathe into any area that feels tense",
			},
			DurationMinutes: 10, Difficulty: "beginner",
		},
	},
	"anxiety-management": {
		{
			ID: "anx-1", Name: "5-4-3-2-1 Grounding", Description: "Use your senses to come back to the present moment",
			Steps: []string{
				"Name five things you can see",
				"Name four things you can touch",
				"Name three things you can hear",
				"Name two things you can smell",
				"Name one thing you can taste",
			},
			DurationMinutes: 5, Difficulty: "beginner",
		},
	},
	"sleep-hygiene": {
		{
			ID: "slp-1", Name: "Wind-Down Routine", Description: "Prepare body and mind for restful sleep",
			Steps: []string{
				"Put screens away thirty minutes before bed",
				"Dim the lights and keep the room cool",
				"Write down anything on your mind for tomorrow",
				"Do slow breathing until you feel sleepy",
			},
			DurationMinutes: 30, Difficulty: "intermediate",
		},
	},
	"stress-relief": {
		{
			ID: "str-1", Name: "Box Breathing", Description: "A steady breathing pattern that calms the nervous system",
			Steps: []string{
				"Breathe in for four counts",
				"Hold for four counts",
				"Breathe out for four counts",
				"Hold for four counts and repeat",
			},
			DurationMinutes: 5, Difficulty: "beginner",
		},
	},
	"self-care": {
		{
			ID: "sc-1", Name: "Gratitude Journal", Description: "Notice what went well today",
			Steps: []string{
				"Write down three things you are grateful for",
				"Note one thing you did well today",
				"Plan one kind thing to do for yourself tomorrow",
			},
			DurationMinutes: 10, Difficulty: "beginner",
		},
	},
}
