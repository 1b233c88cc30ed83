package main

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Narrator is the opaque text-generation collaborator. It narrates scores
// and profiles for presentation; nothing it produces ever feeds back into
// the numeric scoring.
type Narrator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Embedder turns profile text into a vector for the vector store. Refresh
// happens on demand through its own endpoint, never inline with scoring.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float64, error)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// profileEmbeddingText is the canonical text representation of a profile fed
// to the embedding model.
func profileEmbeddingText(s *ProfileSnapshot) string {
	return fmt.Sprintf(
		"About me: %s\nHobbies: %s\nLifestyle: %s\nValues: %s\nFuture goals: %s\nPerfect date: %s",
		s.AboutMe, s.Hobbies, s.Lifestyle, s.Values, s.FutureGoals, s.PerfectDate,
	)
}

// generateMatchAnalysis narrates a computed score. A nil narrator or a
// generation failure degrades to canned text; the caller still gets a report.
func generateMatchAnalysis(ctx context.Context, n Narrator, a, b *ProfileSnapshot, score MatchScore) string {
	const fallback = "Unable to generate match analysis report, please try again later."
	if n == nil {
		return fallback
	}

	prompt := fmt.Sprintf(`Analyze the matching situation of the following two users and generate a detailed analysis report:

User 1 Information:
- Name: %s
- Age: %d
- Gender: %s
- Orientation: %s
- Hobbies: %s
- Values: %s
- Future Goals: %s
- Perfect Date: %s

User 2 Information:
- Name: %s
- Age: %d
- Gender: %s
- Orientation: %s
- Hobbies: %s
- Values: %s
- Future Goals: %s
- Perfect Date: %s

Match Score: %d/100

Please generate a detailed analysis report including:
1. Overall match evaluation
2. Analysis of each dimension (basic preferences, age, location, interests, values, personality similarity)
3. Potential advantages and challenges
4. Suggested dating activities
5. Match recommendations

Please answer in English with clear formatting.`,
		a.Name, a.Age, a.Gender, a.Orientation, a.Hobbies, a.Values, a.FutureGoals, a.PerfectDate,
		b.Name, b.Age, b.Gender, b.Orientation, b.Hobbies, b.Values, b.FutureGoals, b.PerfectDate,
		score.Overall)

	out, err := n.GenerateContent(ctx, prompt)
	if err != nil {
		log.Println("Error generating match analysis:", err)
		return fallback
	}
	return out
}

// generatePersonalitySummary narrates one user's character for display next
// to a recommendation.
func generatePersonalitySummary(ctx context.Context, n Narrator, s *ProfileSnapshot) string {
	fallback := fmt.Sprintf("%s is a %d-year-old %s with a unique personality. They enjoy %s and are looking for a meaningful connection.",
		s.Name, s.Age, s.Gender, orDefault(s.Hobbies, "various activities"))
	if n == nil {
		return fallback
	}

	prompt := fmt.Sprintf(`Generate a concise personality summary (under 60 words) for the following user, highlighting their key personality traits and characteristics:

User Information:
- Name: %s
- Age: %d years old
- Gender: %s
- MBTI: %s
- Hobbies: %s
- Lifestyle: %s
- Values: %s
- About Me: %s
- Perfect Date: %s
- Extroversion Score: %d

Please create an engaging personality summary that captures their unique character and what makes them special. Focus on their personality traits, interests, and what they're looking for in a relationship.`,
		s.Name, s.Age, s.Gender, orDefault(s.MBTI, "Unknown"), orDefault(s.Hobbies, "None"),
		orDefault(s.Lifestyle, "Not specified"), orDefault(s.Values, "Not specified"),
		orDefault(s.AboutMe, "Not specified"), orDefault(s.PerfectDate, "Not specified"),
		s.ExtroversionScore)

	out, err := n.GenerateContent(ctx, prompt)
	if err != nil {
		log.Println("Error generating personality summary:", err)
		return fallback
	}
	return out
}

// generateDatingAdvice suggests first-date ideas for a pair.
func generateDatingAdvice(ctx context.Context, n Narrator, a, b *ProfileSnapshot) string {
	const fallback = "Suggest choosing a comfortable cafe or restaurant for the first meeting, maintain a relaxed and pleasant atmosphere, and learn more about each other's interests."
	if n == nil {
		return fallback
	}

	prompt := fmt.Sprintf(`Based on the information of the following two users, provide 3-5 specific suggestions for their first date:

User A Information:
- Name: %s
- Age: %d years old
- Hobbies: %s
- Ideal Date: %s
- Personality: %s

User B Information:
- Name: %s
- Age: %d years old
- Hobbies: %s
- Ideal Date: %s
- Personality: %s

Please provide:
1. Suitable date location suggestions
2. Conversation topic suggestions
3. Important reminders
4. Date timing suggestions

Please answer in English with practical and specific advice.`,
		a.Name, a.Age, orDefault(a.Hobbies, "None"), orDefault(a.PerfectDate, "None"), orDefault(a.MBTI, "Unknown"),
		b.Name, b.Age, orDefault(b.Hobbies, "None"), orDefault(b.PerfectDate, "None"), orDefault(b.MBTI, "Unknown"))

	out, err := n.GenerateContent(ctx, prompt)
	if err != nil {
		log.Println("Error generating dating advice:", err)
		return fallback
	}
	return out
}
