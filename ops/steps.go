package ops

import (
	"encoding/json"
	"fmt"
)

// Placeholder storage locations returned by the stub operations
const (
	PdfURI   = "s3://mybucket/foo/XXXX.pdf"
	PngURI   = "s3://mybucket/foo/XXXX.png"
	JsonURI  = "s3://mybucket/foo/XXXX.json"
	StubJob  = "XXXXXXXX"
	WordStub = 60
)

// DocumentInput the common request record of the stub operations
type DocumentInput struct {
	StrValue  string `json:"strValue"`
	StrValue2 string `json:"strValue2,omitempty"`
	StrValue3 string `json:"strValue3,omitempty"`
}

// CheckResult describes the availability and handling of a document
type CheckResult struct {
	Available         bool   `json:"available"`
	Mode              string `json:"mode"`
	Option            bool   `json:"option"`
	ProcessingSeconds int    `json:"processingSeconds"`
	CodeValue         int    `json:"codeValue"`
	TypeValue         string `json:"typeValue"`
}

// CheckDocument reports a document as available for html handling
func CheckDocument(in DocumentInput) CheckResult {
	return CheckResult{
		Available:         true,
		Mode:              "html",
		Option:            false,
		ProcessingSeconds: 4,
		CodeValue:         200,
		TypeValue:         "text/html",
	}
}

// RenderInput request record for the pdf renderer
type RenderInput struct {
	StrValue  string `json:"strValue"`
	ListValue []int  `json:"listValue,omitempty"`
}

// RenderResult the rendered document with its page sizes
type RenderResult struct {
	Available bool   `json:"available"`
	ListValue []int  `json:"listValue"`
	ResultURI string `json:"resultURI"`
}

// RenderPdf renders a document to pdf
func RenderPdf(in RenderInput) RenderResult {
	return RenderResult{
		Available: true,
		ListValue: []int{720, 520},
		ResultURI: PdfURI,
	}
}

// PreviewResult preview image and document locations
type PreviewResult struct {
	Available bool   `json:"available"`
	ImageURI  string `json:"imageURI"`
	ResultURI string `json:"resultURI"`
}

// GeneratePreviews produces a page preview next to the pdf
func GeneratePreviews(in DocumentInput) PreviewResult {
	return PreviewResult{
		Available: true,
		ImageURI:  PngURI,
		ResultURI: PdfURI,
	}
}

// ThumbnailResult a thumbnail image location
type ThumbnailResult struct {
	ImageURI string `json:"imageURI"`
}

// Thumbnail produces a thumbnail for a document
func Thumbnail(in DocumentInput) ThumbnailResult {
	return ThumbnailResult{ImageURI: PngURI}
}

// ExtractResult extracted data location and word count
type ExtractResult struct {
	DataURI   string `json:"dataURI"`
	WordCount int    `json:"wordCount"`
}

// ExtractText extracts the text content of a document
func ExtractText(in DocumentInput) ExtractResult {
	return ExtractResult{DataURI: JsonURI, WordCount: WordStub}
}

// JobInput request record for the analysis job pair
type JobInput struct {
	StrValue  string `json:"strValue"`
	StrValue2 string `json:"strValue2,omitempty"`
	JobID     string `json:"jobId,omitempty"`
}

// JobResult the identifier of a started analysis job
type JobResult struct {
	JobID string `json:"jobId"`
}

// StartAnalysisJob starts an asynchronous analysis job
func StartAnalysisJob(in JobInput) JobResult {
	return JobResult{JobID: StubJob}
}

// GetAnalysisResult polls the result of an analysis job
func GetAnalysisResult(in JobInput) ExtractResult {
	return ExtractResult{DataURI: JsonURI, WordCount: WordStub}
}

// ParseDocument parses a document into structured data
func ParseDocument(in DocumentInput) ExtractResult {
	return ExtractResult{DataURI: JsonURI, WordCount: WordStub}
}

// RenderImage renders a document page to an image
func RenderImage(in DocumentInput) ThumbnailResult {
	return ThumbnailResult{ImageURI: PngURI}
}

// MergeResults passes collected step results through unchanged
func MergeResults(values []json.RawMessage) []json.RawMessage {
	return values
}

// ScoreResult scoring of an analyzed document
type ScoreResult struct {
	DataURI    string  `json:"dataURI"`
	WordCount  int     `json:"wordCount"`
	Available  bool    `json:"available"`
	Option     bool    `json:"option"`
	Confidence float64 `json:"confidence"`
}

// ScoreDocument scores an analyzed document
func ScoreDocument(in DocumentInput) ScoreResult {
	return ScoreResult{
		DataURI:    JsonURI,
		WordCount:  WordStub,
		Available:  true,
		Option:     false,
		Confidence: 0.8,
	}
}

// byte level adapters, one per registered function

func checkHandler(data []byte) ([]byte, error) {
	var in DocumentInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode check input, error %v", err)
	}
	return json.Marshal(CheckDocument(in))
}

func renderHandler(data []byte) ([]byte, error) {
	var in RenderInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode render input, error %v", err)
	}
	return json.Marshal(RenderPdf(in))
}

func previewHandler(data []byte) ([]byte, error) {
	var in DocumentInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode preview input, error %v", err)
	}
	return json.Marshal(GeneratePreviews(in))
}

func thumbnailHandler(data []byte) ([]byte, error) {
	var in DocumentInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode thumbnail input, error %v", err)
	}
	return json.Marshal(Thumbnail(in))
}

func extractHandler(data []byte) ([]byte, error) {
	var in DocumentInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode extract input, error %v", err)
	}
	return json.Marshal(ExtractText(in))
}

func startJobHandler(data []byte) ([]byte, error) {
	var in JobInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode job input, error %v", err)
	}
	return json.Marshal(StartAnalysisJob(in))
}

func jobResultHandler(data []byte) ([]byte, error) {
	var in JobInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode job input, error %v", err)
	}
	return json.Marshal(GetAnalysisResult(in))
}

func parseHandler(data []byte) ([]byte, error) {
	var in DocumentInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode parse input, error %v", err)
	}
	return json.Marshal(ParseDocument(in))
}

func imageHandler(data []byte) ([]byte, error) {
	var in DocumentInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode image input, error %v", err)
	}
	return json.Marshal(RenderImage(in))
}

func mergeHandler(data []byte) ([]byte, error) {
	var values []json.RawMessage
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to decode merge input, error %v", err)
	}
	return json.Marshal(MergeResults(values))
}

func scoreHandler(data []byte) ([]byte, error) {
	var in DocumentInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode score input, error %v", err)
	}
	return json.Marshal(ScoreDocument(in))
}
