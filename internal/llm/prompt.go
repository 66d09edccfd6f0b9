package llm

import (
	"fmt"
	"strings"
)

const flashcardPrompt = `Generate flashcards as a JSON array where each object has "question" and "answer" keys. The number of flashcards should be proportional to the text's length and complexity, with a minimum of 1 and a maximum of 10. Each question should test a key concept and the answer should be brief but complete. Use <b> tags to emphasize important words or phrases. Cite short code or examples if needed.

Example input: "In parallel computing, load balancing refers to the practice of distributing computational work evenly across multiple processing units. This is crucial for maximizing efficiency and minimizing idle time. Dynamic load balancing adjusts the distribution of work during runtime, while static load balancing determines the distribution before execution begins."

Example output:
[
  {
    "question": "What is the primary goal of <b>load balancing</b> in parallel computing?",
    "answer": "To <b>distribute work evenly</b> across processing units, maximizing efficiency and minimizing idle time."
  },
  {
    "question": "How does <b>dynamic load balancing</b> differ from <b>static load balancing</b>?",
    "answer": "Dynamic balancing <b>adjusts work distribution during runtime</b>, while static balancing <b>determines distribution before execution</b>."
  }
]

Please output only the JSON array with no additional text or commentary.
Now generate flashcards for the text below:`

const explainPrompt = `Explain the following text in simple terms, focusing on the main concepts and their relationships. Use clear and concise language, and break down complex ideas into easily understandable parts. If there are any technical terms, provide brief explanations for them. Return your explanation in a JSON object with an "explanation" key.

Example output:
{
  "explanation": "Load balancing is a technique in parallel computing that ensures work is distributed evenly across different processing units. Think of it like distributing tasks among team members - when done well, everyone has a fair amount of work and the team is more efficient. There are two main approaches: dynamic balancing (adjusting work distribution as needed) and static balancing (planning the distribution ahead of time)."
}

Now explain this text:
Please output only the JSON object with no additional text or commentary.`

const languagePrompt = `Return a JSON object with "word", "translation", "question", and "answer" keys for the given word in {targetLanguage}.

Example input:
Word: "refused"
Phrase: "Hamas refused to join a new round of peace negotiations."

Example output:
{
  "word": "refused",
  "translation": "từ chối",
  "question": "Hamas <b>refused</b> to join a new round of peace negotiations.",
  "answer": "Declined to accept or comply with a request or proposal."
}

Sometimes the input may be malformed or incomplete:
Word: "@foreignminister"
Phrase: ""

Example output for malformed input:
{
  "word": "foreign minister",
  "translation": "bộ trưởng ngoại giao",
  "question": "The <b>foreign minister</b> announced new trade agreements with neighboring countries.",
  "answer": "The government minister responsible for a country's foreign policy and relations."
}

Example input for incomplete phrase:
Word: "computational overhead"
Phrase: "ng Window Attention, we have significantly reduced computational overhead while"

Example output:
{
  "word": "computational overhead",
  "translation": "chi phí tính toán",
  "question": "Using Sliding Window Attention, we have significantly reduced <b>computational overhead</b> while maintaining model accuracy.",
  "answer": "The additional computing resources required to perform an operation or run an algorithm."
}


Now explain the word in the phrase below:
Word: "{word}"
Phrase: "{phrase}"
Please output only the JSON object without any additional text or commentary.`

const languageTail = "Now explain the word in the phrase below:"

// Prompts holds the instruction text for each mode. The language prompt may
// reference {targetLanguage}, {word} and {phrase}.
type Prompts struct {
	Flashcard string `yaml:"flashcard"`
	Explain   string `yaml:"explain"`
	Language  string `yaml:"language"`
}

func DefaultPrompts() Prompts {
	return Prompts{
		Flashcard: flashcardPrompt,
		Explain:   explainPrompt,
		Language:  languagePrompt,
	}
}

// PromptInput is the selection a prompt is built from.
type PromptInput struct {
	Phrase         string
	Word           string
	TargetLanguage string
	// SourceLanguage is the detected language of the phrase, if known.
	SourceLanguage string
}

// Build renders the prompt for mode. Empty templates fall back to the
// defaults.
func (p Prompts) Build(mode Mode, in PromptInput) (string, error) {
	defaults := DefaultPrompts()
	phrase := clipText(in.Phrase, maxPhraseChars)
	switch mode {
	case ModeFlashcard:
		if phrase == "" {
			return "", fmt.Errorf("selection empty; cannot build flashcards")
		}
		return firstNonEmpty(p.Flashcard, defaults.Flashcard) + "\n\n" + phrase, nil
	case ModeExplain:
		if phrase == "" {
			return "", fmt.Errorf("selection empty; cannot explain")
		}
		return firstNonEmpty(p.Explain, defaults.Explain) + "\n\n" + phrase, nil
	case ModeLanguage:
		word := strings.TrimSpace(in.Word)
		if word == "" {
			return "", fmt.Errorf("word empty; cannot build language card")
		}
		target := strings.TrimSpace(in.TargetLanguage)
		if target == "" {
			target = "English"
		}
		tmpl := firstNonEmpty(p.Language, defaults.Language)
		if src := strings.TrimSpace(in.SourceLanguage); src != "" && strings.Contains(tmpl, languageTail) {
			tmpl = strings.Replace(tmpl, languageTail, "The phrase is written in "+src+".\n"+languageTail, 1)
		}
		r := strings.NewReplacer("{targetLanguage}", target, "{word}", word, "{phrase}", phrase)
		return r.Replace(tmpl), nil
	default:
		return "", fmt.Errorf("unknown mode %q", mode)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
