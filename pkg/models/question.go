package models

// Question is a single historical trivia question with the answer the classifier compares against
type Question struct {
	Text           string `json:"pergunta" db:"pergunta"`
	ExpectedAnswer string `json:"resposta_esperada" db:"resposta_esperada"`
}
