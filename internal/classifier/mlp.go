package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MLP is a pre-trained multi-layer perceptron classifier. Coefs[l] has one row per input
// of layer l and one column per unit.
type MLP struct {
	Classes       []int         `json:"classes"`
	Coefs         [][][]float64 `json:"coefs"`
	Intercepts    [][]float64   `json:"intercepts"`
	Activation    string        `json:"activation"`     // Hidden layer activation, defaults to relu
	OutActivation string        `json:"out_activation"` // logistic for two classes, softmax otherwise

	weights []*mat.Dense
	biases  []*mat.VecDense
}

// LoadMLP reads a model artifact from a JSON file
func LoadMLP(path string) (*MLP, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer file.Close()

	var m MLP
	if err := json.NewDecoder(file).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode model %s: %w", path, err)
	}
	if err := m.init(); err != nil {
		return nil, fmt.Errorf("invalid model %s: %w", path, err)
	}
	return &m, nil
}

func (m *MLP) init() error {
	if len(m.Classes) < 2 {
		return fmt.Errorf("at least two classes required, got %d", len(m.Classes))
	}
	if len(m.Coefs) == 0 {
		return fmt.Errorf("model has no layers")
	}
	if len(m.Coefs) != len(m.Intercepts) {
		return fmt.Errorf("%d weight layers but %d intercept layers", len(m.Coefs), len(m.Intercepts))
	}

	width := -1
	for l, layer := range m.Coefs {
		if len(layer) == 0 {
			return fmt.Errorf("layer %d has no inputs", l)
		}
		if width >= 0 && len(layer) != width {
			return fmt.Errorf("layer %d expects %d inputs, previous layer has %d units", l, len(layer), width)
		}
		units := len(m.Intercepts[l])
		if units == 0 {
			return fmt.Errorf("layer %d has no units", l)
		}
		for i, row := range layer {
			if len(row) != units {
				return fmt.Errorf("layer %d row %d has %d weights, want %d", l, i, len(row), units)
			}
		}
		width = units
	}

	wantOut := len(m.Classes)
	if wantOut == 2 {
		wantOut = 1
	}
	if width != wantOut {
		return fmt.Errorf("output layer has %d units, want %d for %d classes", width, wantOut, len(m.Classes))
	}

	if m.Activation == "" {
		m.Activation = "relu"
	}
	if _, ok := activations[m.Activation]; !ok {
		return fmt.Errorf("unsupported activation %q", m.Activation)
	}
	if m.OutActivation == "" {
		m.OutActivation = "softmax"
		if width == 1 {
			m.OutActivation = "logistic"
		}
	}
	if m.OutActivation != "softmax" {
		if _, ok := activations[m.OutActivation]; !ok {
			return fmt.Errorf("unsupported output activation %q", m.OutActivation)
		}
	}

	m.weights = make([]*mat.Dense, len(m.Coefs))
	m.biases = make([]*mat.VecDense, len(m.Coefs))
	for l, layer := range m.Coefs {
		units := len(m.Intercepts[l])
		data := make([]float64, 0, len(layer)*units)
		for _, row := range layer {
			data = append(data, row...)
		}
		m.weights[l] = mat.NewDense(len(layer), units, data)
		m.biases[l] = mat.NewVecDense(units, append([]float64(nil), m.Intercepts[l]...))
	}
	return nil
}

// Inputs returns the number of features the model expects
func (m *MLP) Inputs() int {
	return len(m.Coefs[0])
}

// Predict returns the class label for one feature vector
func (m *MLP) Predict(features []float64) (int, error) {
	if len(features) != m.Inputs() {
		return 0, fmt.Errorf("got %d features, model expects %d", len(features), m.Inputs())
	}

	out := m.forward(features)
	if len(out) == 1 {
		if out[0] > 0.5 {
			return m.Classes[1], nil
		}
		return m.Classes[0], nil
	}

	return m.Classes[floats.MaxIdx(out)], nil
}

// forward runs every layer: out = act(Wᵀ·in + b)
func (m *MLP) forward(input []float64) []float64 {
	in := mat.NewVecDense(len(input), input)
	last := len(m.weights) - 1
	for l, w := range m.weights {
		_, units := w.Dims()
		out := mat.NewVecDense(units, nil)
		out.MulVec(w.T(), in)
		out.AddVec(out, m.biases[l])

		raw := out.RawVector().Data
		if l < last {
			activations[m.Activation](raw)
		} else if m.OutActivation == "softmax" {
			softmax(raw)
		} else {
			activations[m.OutActivation](raw)
		}
		in = out
	}
	return in.RawVector().Data
}

var activations = map[string]func([]float64){
	"identity": func([]float64) {},
	"logistic": func(v []float64) {
		for i, x := range v {
			v[i] = 1 / (1 + math.Exp(-x))
		}
	},
	"tanh": func(v []float64) {
		for i, x := range v {
			v[i] = math.Tanh(x)
		}
	},
	"relu": func(v []float64) {
		for i, x := range v {
			if x < 0 {
				v[i] = 0
			}
		}
	},
}

func softmax(v []float64) {
	floats.AddConst(-floats.Max(v), v)
	for i, x := range v {
		v[i] = math.Exp(x)
	}
	floats.Scale(1/floats.Sum(v), v)
}
