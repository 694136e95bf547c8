package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lanbix/interview-backend/internal/models"
)

func questionsPrompt(jobDescription, resume, interviewType string, count int) string {
	return fmt.Sprintf(`Generate %d interview questions for a %s interview.

Job Description: %s
Candidate Resume: %s

Generate a mix of technical questions (if applicable), behavioral questions,
problem-solving scenarios, and role-specific questions.

Return as a JSON array with structure:
[
  {
    "question": "Question text",
    "category": "technical|behavioral|general",
    "difficulty": "easy|medium|hard",
    "expectedPoints": ["point1", "point2"]
  }
]`, count, interviewType, jobDescription, resume)
}

func assistancePrompt(question, candidateAnswer, jobDescription string) string {
	return fmt.Sprintf(`Analyze this interview response and provide assistance:

Question: %s
Candidate's Answer: %s
Job Description: %s

Provide a better answer suggestion, key points that should be mentioned, a
confidence score (0-1) for the current answer, and areas for improvement.

Return as JSON:
{
  "suggestion": "Improved answer",
  "keyPoints": ["point1", "point2"],
  "confidence": 0.7,
  "improvements": ["area1", "area2"],
  "score": 7
}`, question, candidateAnswer, jobDescription)
}

func performancePrompt(qa []QA, jobDescription string) string {
	var b strings.Builder
	for i, pair := range qa {
		resp := pair.Response
		if resp == "" {
			resp = "No response"
		}
		fmt.Fprintf(&b, "%d. Q: %s\nA: %s\n", i+1, pair.Question, resp)
	}

	return fmt.Sprintf(`Analyze this interview performance:

Questions and Responses:
%s
Job Description: %s

Provide an overall assessment, strengths, areas for improvement, an overall
score (1-10), and a recommendation (pass/fail/consider).

Return as JSON:
{
  "assessment": "Overall assessment",
  "strengths": ["strength1", "strength2"],
  "weaknesses": ["weakness1", "weakness2"],
  "score": 7,
  "recommendation": "pass|fail|consider",
  "detailedFeedback": "Detailed feedback"
}`, b.String(), jobDescription)
}

func mockEvaluationPrompt(mi *models.MockInterview) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are an expert technical interviewer. Evaluate the following interview session:
Position: %s
Difficulty: %s

`, mi.Position, mi.Level)

	for i, q := range mi.Questions {
		answer := ""
		for _, a := range mi.Answers {
			if a.QuestionID == i {
				answer = a.AnswerText
			}
		}
		fmt.Fprintf(&b, "Question %d: %s\nIdeal answer: %s\nCandidate answer: %s\n\n", i+1, q.Text, q.IdealAnswer, answer)
	}

	b.WriteString(`Score each answer from 1-10 and provide brief feedback, then give an
overall score (0-100) and overall feedback.

Return in JSON format:
{
  "overallScore": 85,
  "overallFeedback": "Overall feedback text",
  "questionFeedback": [
    {"score": 8, "feedback": "Feedback text"}
  ]
}`)
	return b.String()
}

// decodeJSON strips markdown code fences the models sometimes wrap
// around their output before unmarshalling.
func decodeJSON(raw string, dst any) error {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	return json.Unmarshal([]byte(s), dst)
}
