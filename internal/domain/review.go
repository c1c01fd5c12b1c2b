package domain

// ReviewFeedback is the binary signal a user gives while studying.
// It is mapped to a raw SM-2 quality by the scheduler.
type ReviewFeedback string

// Possible review feedback values
const (
	FeedbackForgot     ReviewFeedback = "forgot"
	FeedbackRemembered ReviewFeedback = "remembered"
)

// ValidFeedback reports whether the given feedback is one of the
// recognized binary values.
func ValidFeedback(f ReviewFeedback) bool {
	return f == FeedbackForgot || f == FeedbackRemembered
}
