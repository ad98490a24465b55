package classifier

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, name string, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func testVectorizer() map[string]interface{} {
	return map[string]interface{}{
		"vocabulary": map[string]int{"revolução": 0, "francesa": 1, "batata": 2},
		"idf":        []float64{1, 1, 1},
	}
}

func TestTokenize(t *testing.T) {
	require.Equal(t, []string{"Dom", "Pedro", "II", "1822"}, tokenize("Dom Pedro II, 1822!"))
	require.Equal(t, []string{"revolução", "francesa"}, tokenize("a revolução francesa"))
	require.Empty(t, tokenize("a b c"))
}

func TestVectorizerTransform(t *testing.T) {
	v, err := LoadVectorizer(writeJSON(t, "vetor.json", testVectorizer()))
	require.NoError(t, err)
	require.Equal(t, 3, v.Features())

	vec := v.Transform("A Revolução FRANCESA")
	require.InDelta(t, 1/math.Sqrt2, vec[0], 1e-9)
	require.InDelta(t, 1/math.Sqrt2, vec[1], 1e-9)
	require.Zero(t, vec[2])

	require.Equal(t, []float64{0, 0, 0}, v.Transform("nada a ver"))
}

func TestVectorizerIDFAndSublinear(t *testing.T) {
	v := &Vectorizer{
		Vocabulary:  map[string]int{"rei": 0, "rainha": 1},
		IDF:         []float64{2, 1},
		SublinearTF: true,
		Norm:        "none",
	}
	require.NoError(t, v.init())

	vec := v.Transform("rei rei rainha")
	require.InDelta(t, 2*(1+math.Log(2)), vec[0], 1e-9)
	require.InDelta(t, 1, vec[1], 1e-9)
}

func TestVectorizerBigrams(t *testing.T) {
	v := &Vectorizer{
		Vocabulary: map[string]int{"dom pedro": 0, "pedro": 1},
		NgramRange: [2]int{1, 2},
		StopWords:  []string{"o"},
		Norm:       "none",
	}
	require.NoError(t, v.init())

	require.Equal(t, []float64{1, 1}, v.Transform("Dom Pedro"))
}

func TestVectorizerRejectsBadArtifacts(t *testing.T) {
	_, err := LoadVectorizer(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	_, err = LoadVectorizer(writeJSON(t, "empty.json", map[string]interface{}{}))
	require.Error(t, err)

	bad := testVectorizer()
	bad["idf"] = []float64{1}
	_, err = LoadVectorizer(writeJSON(t, "bad.json", bad))
	require.Error(t, err)

	bad = testVectorizer()
	bad["norm"] = "max"
	_, err = LoadVectorizer(writeJSON(t, "norm.json", bad))
	require.Error(t, err)
}

func TestMLPBinaryWithHiddenLayer(t *testing.T) {
	m := &MLP{
		Classes: []int{0, 1},
		Coefs: [][][]float64{
			{{1, 0}, {0, 1}, {-1, -1}},
			{{1}, {1}},
		},
		Intercepts: [][]float64{{0, 0}, {-0.1}},
		Activation: "relu",
	}
	require.NoError(t, m.init())
	require.Equal(t, "logistic", m.OutActivation)

	label, err := m.Predict([]float64{0.7, 0.7, 0})
	require.NoError(t, err)
	require.Equal(t, 1, label)

	label, err = m.Predict([]float64{0, 0, 1})
	require.NoError(t, err)
	require.Equal(t, 0, label)

	_, err = m.Predict([]float64{1})
	require.Error(t, err)
}

func TestMLPSoftmax(t *testing.T) {
	m := &MLP{
		Classes:    []int{0, 1, 2},
		Coefs:      [][][]float64{{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}},
		Intercepts: [][]float64{{0, 0, 0}},
	}
	require.NoError(t, m.init())
	require.Equal(t, "softmax", m.OutActivation)

	label, err := m.Predict([]float64{0.1, 0.2, 0.9})
	require.NoError(t, err)
	require.Equal(t, 2, label)
}

func TestMLPRejectsBadShapes(t *testing.T) {
	cases := map[string]*MLP{
		"one class": {Classes: []int{1}, Coefs: [][][]float64{{{1}}}, Intercepts: [][]float64{{0}}},
		"no layers": {Classes: []int{0, 1}},
		"ragged row": {
			Classes:    []int{0, 1},
			Coefs:      [][][]float64{{{1}, {1, 2}}},
			Intercepts: [][]float64{{0}},
		},
		"layers do not chain": {
			Classes:    []int{0, 1},
			Coefs:      [][][]float64{{{1, 1}}, {{1}, {1}, {1}}},
			Intercepts: [][]float64{{0, 0}, {0}},
		},
		"wrong output width": {
			Classes:    []int{0, 1},
			Coefs:      [][][]float64{{{1, 1}}},
			Intercepts: [][]float64{{0, 0}},
		},
		"unknown activation": {
			Classes:    []int{0, 1},
			Coefs:      [][][]float64{{{1}}},
			Intercepts: [][]float64{{0}},
			Activation: "swish",
		},
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			require.Error(t, m.init())
		})
	}
}

func TestPipelineLoadAndPredict(t *testing.T) {
	vectorizerPath := writeJSON(t, "vetor_final.json", testVectorizer())
	modelPath := writeJSON(t, "modelo_final.json", map[string]interface{}{
		"classes":    []int{0, 1},
		"coefs":      [][][]float64{{{1}, {1}, {-5}}},
		"intercepts": [][]float64{{-0.5}},
	})

	p, err := Load(modelPath, vectorizerPath)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, p.Classes())

	ctx := context.Background()
	label, err := p.Predict(ctx, "A Revolução Francesa")
	require.NoError(t, err)
	require.Equal(t, 1, label)

	label, err = p.Predict(ctx, "batata batata")
	require.NoError(t, err)
	require.Equal(t, 0, label)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = p.Predict(cancelled, "A Revolução Francesa")
	require.ErrorIs(t, err, context.Canceled)
}

func TestPipelineRejectsMismatchedArtifacts(t *testing.T) {
	vectorizerPath := writeJSON(t, "vetor_final.json", testVectorizer())
	modelPath := writeJSON(t, "modelo_final.json", map[string]interface{}{
		"classes":    []int{0, 1},
		"coefs":      [][][]float64{{{1}, {1}}},
		"intercepts": [][]float64{{0}},
	})

	_, err := Load(modelPath, vectorizerPath)
	require.Error(t, err)
}

func TestMLPForwardValues(t *testing.T) {
	m := &MLP{
		Classes: []int{0, 1},
		Coefs: [][][]float64{
			{{0.5, -1}, {2, 0.25}},
			{{1.5}, {-2}},
		},
		Intercepts: [][]float64{{0.1, -0.2}, {0.3}},
		Activation: "tanh",
	}
	require.NoError(t, m.init())

	x := []float64{0.4, 0.8}
	h0 := math.Tanh(0.4*0.5 + 0.8*2 + 0.1)
	h1 := math.Tanh(0.4*-1 + 0.8*0.25 - 0.2)
	want := 1 / (1 + math.Exp(-(h0*1.5 + h1*-2 + 0.3)))

	out := m.forward(x)
	require.Len(t, out, 1)
	require.InDelta(t, want, out[0], 1e-12)
	require.Equal(t, []float64{0.4, 0.8}, x)
}

func TestSoftmaxSumsToOne(t *testing.T) {
	v := []float64{1000, 1001, 999}
	softmax(v)

	var sum float64
	for _, p := range v {
		sum += p
	}
	require.InDelta(t, 1, sum, 1e-12)
	require.Greater(t, v[1], v[0])
	require.Greater(t, v[0], v[2])
}

func TestVectorizerL1Norm(t *testing.T) {
	v := &Vectorizer{
		Vocabulary: map[string]int{"rei": 0, "rainha": 1},
		Norm:       "l1",
	}
	require.NoError(t, v.init())

	vec := v.Transform("rei rei rei rainha")
	require.InDelta(t, 0.75, vec[0], 1e-12)
	require.InDelta(t, 0.25, vec[1], 1e-12)
}
