package turingprobe

// TopicUnknown is the bucket for questions missing from the topic map.
const TopicUnknown = "unknown"

// TopicMap assigns survey questions to topic buckets for per-topic metrics.
// Keys must match the question text exactly.
type TopicMap map[string]string

// DefaultTopics returns the topic buckets of the study's ten-question survey.
func DefaultTopics() TopicMap {
	return TopicMap{
		"What’s something fun you did last weekend?":                                    "casual",
		"What kind of music do you like to listen to when you're relaxing?":              "casual",
		"How would you define multiplication using addition?":                            "educational",
		"Explain the concept of a binary search algorithm.":                              "educational",
		"Is it better to be happy or to know the truth?":                                 "philosophical",
		"If no one remembers your actions, do they still matter?":                        "philosophical",
		"Rewrite this sentence to sound more formal: “I messed up the report.”":          "writing",
		"Write a short email requesting an extension for a project deadline.":            "writing",
		"I’m torn between a high-paying job I dislike and one I enjoy. What should I do?": "advice",
		"I had a fight with a close friend — should I apologize even if I wasn’t wrong?":  "advice",
	}
}

// Lookup returns the topic for question, or TopicUnknown.
func (m TopicMap) Lookup(question string) string {
	if topic, ok := m[question]; ok && topic != "" {
		return topic
	}
	return TopicUnknown
}
