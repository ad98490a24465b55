package classifier

import (
	"context"
	"fmt"
)

// Pipeline vectorizes raw text and classifies it with the model. It is read-only after
// Load and safe for concurrent use.
type Pipeline struct {
	vectorizer *Vectorizer
	model      *MLP
}

// Load reads the model and vectorizer artifacts and checks they fit together
func Load(modelPath, vectorizerPath string) (*Pipeline, error) {
	vectorizer, err := LoadVectorizer(vectorizerPath)
	if err != nil {
		return nil, err
	}
	model, err := LoadMLP(modelPath)
	if err != nil {
		return nil, err
	}
	return NewPipeline(vectorizer, model)
}

// NewPipeline joins an initialised vectorizer and model
func NewPipeline(vectorizer *Vectorizer, model *MLP) (*Pipeline, error) {
	if vectorizer.Features() != model.Inputs() {
		return nil, fmt.Errorf("vectorizer produces %d features but model expects %d",
			vectorizer.Features(), model.Inputs())
	}
	return &Pipeline{vectorizer: vectorizer, model: model}, nil
}

// Predict classifies a single text sample
func (p *Pipeline) Predict(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return p.model.Predict(p.vectorizer.Transform(text))
}

// Classes returns every label the model can emit
func (p *Pipeline) Classes() []int {
	return append([]int(nil), p.model.Classes...)
}
