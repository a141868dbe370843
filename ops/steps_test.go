package ops

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDocument(t *testing.T) {
	result := CheckDocument(DocumentInput{StrValue: "doc"})

	assert.True(t, result.Available)
	assert.Equal(t, "html", result.Mode)
	assert.False(t, result.Option)
	assert.Equal(t, 4, result.ProcessingSeconds)
	assert.Equal(t, 200, result.CodeValue)
	assert.Equal(t, "text/html", result.TypeValue)
}

func TestRenderPdf(t *testing.T) {
	result := RenderPdf(RenderInput{StrValue: "doc"})

	assert.True(t, result.Available)
	assert.Equal(t, []int{720, 520}, result.ListValue)
	assert.Equal(t, PdfURI, result.ResultURI)
}

func TestJobPair(t *testing.T) {
	job := StartAnalysisJob(JobInput{StrValue: "doc"})
	require.Equal(t, StubJob, job.JobID)

	result := GetAnalysisResult(JobInput{JobID: job.JobID})
	assert.Equal(t, JsonURI, result.DataURI)
	assert.Equal(t, WordStub, result.WordCount)
}

func TestMergeResultsPassesThrough(t *testing.T) {
	values := []json.RawMessage{
		json.RawMessage(`{"a":1}`),
		json.RawMessage(`{"b":2}`),
	}

	assert.Equal(t, values, MergeResults(values))
}

func TestScoreDocument(t *testing.T) {
	result := ScoreDocument(DocumentInput{StrValue: "doc"})

	assert.True(t, result.Available)
	assert.InDelta(t, 0.8, result.Confidence, 1e-9)
}

func TestRegistryInvoke(t *testing.T) {
	registry := DefaultRegistry()

	data, err := registry.Invoke("proto-check", []byte(`{"strValue":"doc"}`), nil)
	require.NoError(t, err)

	var result CheckResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.True(t, result.Available)
}

func TestRegistryUnknownFunction(t *testing.T) {
	registry := DefaultRegistry()

	_, err := registry.Invoke("proto-missing", []byte(`{}`), nil)
	assert.Error(t, err)

	_, err = registry.ProfileOf("proto-missing")
	assert.Error(t, err)
}

func TestRegistryProfiles(t *testing.T) {
	registry := DefaultRegistry()

	profile, err := registry.ProfileOf("proto-parse")
	require.NoError(t, err)
	assert.Equal(t, HighMemoryProfile, profile)

	profile, err = registry.ProfileOf("proto-respond")
	require.NoError(t, err)
	assert.Equal(t, BaseProfile, profile)
}

func TestRegistryFunctionsSorted(t *testing.T) {
	registry := NewRegistry()
	registry.Register("b", BaseProfile, func(data []byte) ([]byte, error) { return data, nil })
	registry.Register("a", BaseProfile, func(data []byte) ([]byte, error) { return data, nil })

	assert.Equal(t, []string{"a", "b"}, registry.Functions())
}
