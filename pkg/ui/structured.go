package ui

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/promote/pkg/errors"
	"gopkg.in/yaml.v3"
)

type errorView struct {
	Error    string                 `json:"error" yaml:"error"`
	Code     string                 `json:"code,omitempty" yaml:"code,omitempty"`
	Category string                 `json:"category,omitempty" yaml:"category,omitempty"`
	Details  map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

func newErrorView(err error) errorView {
	v := errorView{Error: err.Error()}
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		v.Code = string(code)
		v.Category = string(errors.CategoryOf(err))
		v.Details = errors.GetErrorDetails(err)
	}
	return v
}

// jsonRenderer provides JSON output for machine consumption
type jsonRenderer struct {
	encoder *json.Encoder
}

func newJSONRenderer(w io.Writer) *jsonRenderer {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return &jsonRenderer{encoder: encoder}
}

func (r *jsonRenderer) RenderResult(result interface{}) error {
	return r.encoder.Encode(result)
}

func (r *jsonRenderer) RenderError(err error) error {
	return r.encoder.Encode(newErrorView(err))
}

func (r *jsonRenderer) RenderMessage(msg string) error {
	return r.encoder.Encode(map[string]string{"message": msg})
}

// yamlRenderer provides YAML output, one document per call
type yamlRenderer struct {
	output io.Writer
}

func newYAMLRenderer(w io.Writer) *yamlRenderer {
	return &yamlRenderer{output: w}
}

func (r *yamlRenderer) encode(v interface{}) error {
	enc := yaml.NewEncoder(r.output)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (r *yamlRenderer) RenderResult(result interface{}) error {
	return r.encode(result)
}

func (r *yamlRenderer) RenderError(err error) error {
	return r.encode(newErrorView(err))
}

func (r *yamlRenderer) RenderMessage(msg string) error {
	return r.encode(map[string]string{"message": msg})
}
